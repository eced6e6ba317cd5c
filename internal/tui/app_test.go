package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/jask/mdtabs/internal/config"
	"github.com/jask/mdtabs/internal/loader"
	"github.com/jask/mdtabs/internal/session"
	"github.com/jask/mdtabs/internal/storage"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, nil }
func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}
func (failingStore) Delete(context.Context, string) error { return nil }

func newTestApp(t *testing.T, store storage.Store) (*App, *session.Registry) {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStore()
	}
	reg := session.NewRegistry()
	sync := session.NewSynchronizer(storage.NewAdapter(store), nil)
	cfg := config.Config{
		Render: config.RenderConfig{Width: 80},
		Export: config.ExportConfig{Dir: t.TempDir()},
	}
	a := New(context.Background(), cfg, Deps{Registry: reg, Sync: sync}, nil)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return a, reg
}

// drain runs cmd and feeds every resulting message back into the app.
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drain(t, a, c)
		}
		return
	}
	if msg == nil {
		return
	}
	_, next := a.Update(msg)
	drain(t, a, next)
}

func press(a *App, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := a.Update(msg)
	return cmd
}

func loaded(name, text string) fileLoadedMsg {
	return fileLoadedMsg{File: loader.File{Name: name, Text: text}}
}

func view(a *App) string { return ansi.Strip(a.View()) }

func TestEmptyState(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t, nil)
	require.Contains(t, view(a), "No document open")
	require.Contains(t, view(a), "-/0")
}

func TestLoadAddsAndSelects(t *testing.T) {
	t.Parallel()
	a, reg := newTestApp(t, nil)

	a.Update(loaded("a.md", "# Alpha"))
	a.Update(loaded("b.md", "# Beta"))
	require.Equal(t, 2, reg.Len())
	require.Equal(t, 1, reg.ActiveIndex())

	out := view(a)
	require.Contains(t, out, "a.md")
	require.Contains(t, out, "b.md")
	require.Contains(t, out, "# Beta")
	require.Contains(t, out, "2/2")

	a.Update(loaded("a.md", "# Alpha v2"))
	require.Equal(t, 2, reg.Len())
	require.Equal(t, 0, reg.ActiveIndex())
	require.Contains(t, view(a), "# Alpha v2")
	require.Contains(t, view(a), "replaced a.md")
}

func TestLoadFailureReportsAndKeepsDocuments(t *testing.T) {
	t.Parallel()
	a, reg := newTestApp(t, nil)
	a.Update(loaded("a.md", "# Alpha"))

	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	require.NoError(t, os.WriteFile(good, []byte("# Good"), 0o600))
	drain(t, a, a.openCmd([]string{filepath.Join(dir, "missing.md"), good}))

	require.Equal(t, 2, reg.Len())
	require.Equal(t, -1, reg.IndexOf("missing.md"))
	require.GreaterOrEqual(t, reg.IndexOf("good.md"), 0)

	a.Update(loadFailedMsg{Path: "x.md", Err: errors.New("x.md: no such file")})
	require.Contains(t, view(a), "x.md: no such file")
	require.True(t, a.statusErr)
	require.Equal(t, 2, reg.Len())
}

func TestKeysNavigateAndClose(t *testing.T) {
	t.Parallel()
	a, reg := newTestApp(t, nil)
	for _, n := range []string{"A", "B", "C"} {
		a.Update(loaded(n, "# "+n))
	}
	require.Equal(t, 2, reg.ActiveIndex())

	press(a, "tab")
	require.Equal(t, 0, reg.ActiveIndex())
	press(a, "h")
	require.Equal(t, 2, reg.ActiveIndex())
	press(a, "2")
	require.Equal(t, 1, reg.ActiveIndex())
	press(a, "9")
	require.Equal(t, 1, reg.ActiveIndex())

	press(a, "x")
	require.Equal(t, 0, reg.ActiveIndex())
	doc, _ := reg.Current()
	require.Equal(t, "A", doc.Name)

	press(a, "X")
	require.Equal(t, 0, reg.Len())
	require.Equal(t, session.NoActive, reg.ActiveIndex())
	require.Contains(t, view(a), "No document open")
}

func TestMouseSelectsAndCloses(t *testing.T) {
	t.Parallel()
	a, reg := newTestApp(t, nil)
	for _, n := range []string{"one.md", "two.md", "three.md"} {
		a.Update(loaded(n, n))
	}
	_, hits := layoutTabs(reg.Documents(), reg.ActiveIndex(), a.width)
	require.Len(t, hits, 3)

	a.Update(tea.MouseMsg{X: hits[0].start + 1, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Equal(t, 0, reg.ActiveIndex())

	a.Update(tea.MouseMsg{X: hits[1].closeAt, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Equal(t, 2, reg.Len())
	require.Equal(t, -1, reg.IndexOf("two.md"))
	require.Equal(t, 0, reg.ActiveIndex())
}

func TestOpenPrompt(t *testing.T) {
	t.Parallel()
	a, reg := newTestApp(t, nil)
	dir := t.TempDir()
	for _, n := range []string{"a.md", "b.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("# "+n), 0o600))
	}

	press(a, "o")
	require.Equal(t, modeOpen, a.mode)
	require.Contains(t, view(a), "open:")
	a.input.SetValue(filepath.Join(dir, "*.md"))
	drain(t, a, press(a, "enter"))

	require.Equal(t, modeBrowse, a.mode)
	require.Equal(t, 2, reg.Len())
	require.NotEqual(t, session.NoActive, reg.ActiveIndex())

	press(a, "o")
	press(a, "esc")
	require.Equal(t, modeBrowse, a.mode)
}

func TestSaveFailureKeepsSession(t *testing.T) {
	t.Parallel()
	a, reg := newTestApp(t, failingStore{})

	a.Update(loaded("a.md", "# Alpha"))
	require.Equal(t, 1, reg.Len())
	require.Equal(t, 0, reg.ActiveIndex())
	require.True(t, a.statusErr)
	require.Contains(t, view(a), "session not saved")
	require.Contains(t, view(a), "# Alpha")
}

func TestSessionPersistsAcrossApps(t *testing.T) {
	t.Parallel()
	store := storage.NewMemoryStore()
	a, reg := newTestApp(t, store)
	a.Update(loaded("a.md", "# Alpha"))
	a.Update(loaded("b.md", "# Beta"))
	press(a, "1")

	restored := session.NewRegistry()
	sync := session.NewSynchronizer(storage.NewAdapter(store), nil)
	require.True(t, sync.Restore(context.Background(), restored))
	require.Equal(t, reg.Documents(), restored.Documents())
	require.Equal(t, 0, restored.ActiveIndex())

	b := New(context.Background(), config.Config{}, Deps{Registry: restored, Sync: sync}, nil)
	require.Contains(t, view(b), "restored 2 document(s)")
	require.Contains(t, view(b), "# Alpha")
}

func TestReloadKeepsSelection(t *testing.T) {
	t.Parallel()
	a, reg := newTestApp(t, nil)
	a.Update(loaded("a.md", "old"))
	a.Update(loaded("b.md", "# Beta"))

	a.Update(fileReloadedMsg{File: loader.File{Name: "a.md", Text: "new"}})
	require.Equal(t, 1, reg.ActiveIndex())
	require.Equal(t, "new", reg.Documents()[0].Content)

	a.Update(fileReloadedMsg{File: loader.File{Name: "gone.md", Text: "x"}})
	require.Equal(t, 2, reg.Len())
}

func TestExportWritesHTML(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t, nil)
	a.Update(loaded("notes.md", "# Notes\n\n```go\nfunc main() {}\n```\n"))

	drain(t, a, press(a, "e"))
	path := filepath.Join(a.cfg.Export.Dir, "notes.html")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "<h1")
	require.True(t, strings.HasPrefix(a.status, "exported "))
}

func TestExportName(t *testing.T) {
	t.Parallel()
	require.Equal(t, "a.html", exportName("a.md"))
	require.Equal(t, "b.html", exportName("../x/b.txt"))
	require.Equal(t, "README.html", exportName("README"))
}

func TestRenderWidthKeysSaveConfig(t *testing.T) {
	t.Parallel()
	var saved []config.Config
	reg := session.NewRegistry()
	a := New(context.Background(), config.Config{Render: config.RenderConfig{Width: 80}}, Deps{
		Registry: reg,
		Sync:     session.NewSynchronizer(storage.NewAdapter(storage.NewMemoryStore()), nil),
		SaveConfig: func(cfg config.Config) error {
			saved = append(saved, cfg)
			return nil
		},
	}, nil)
	a.Update(tea.WindowSizeMsg{Width: 200, Height: 30})

	drain(t, a, press(a, "]"))
	require.Len(t, saved, 1)
	require.Equal(t, 90, saved[0].Render.Width)
	require.Equal(t, 90, a.deps.Terminal.Width())
	require.Contains(t, view(a), "render width 90 saved")

	for range 10 {
		drain(t, a, press(a, "["))
	}
	require.Equal(t, minRenderWidth, a.cfg.Render.Width)
	require.Equal(t, minRenderWidth, saved[len(saved)-1].Render.Width)
	n := len(saved)
	drain(t, a, press(a, "["))
	require.Len(t, saved, n)
}

func TestRenderWidthSaveFailureReported(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t, nil)
	a.deps.SaveConfig = func(config.Config) error { return errors.New("read-only fs") }

	drain(t, a, press(a, "]"))
	require.Equal(t, 90, a.cfg.Render.Width)
	require.True(t, a.statusErr)
	require.Contains(t, view(a), "read-only fs")
}

func TestRenderWidthWithoutSaver(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t, nil)
	require.Nil(t, press(a, "]"))
	require.Equal(t, 90, a.cfg.Render.Width)
}
