package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/mdtabs/internal/config"
	"github.com/jask/mdtabs/internal/loader"
	"github.com/jask/mdtabs/internal/render"
	"github.com/jask/mdtabs/internal/session"
	"github.com/jask/mdtabs/internal/watch"
)

// Deps are the collaborators the view drives. Registry and Sync are required.
// SaveConfig persists settings changed from the view; nil keeps them in
// memory only.
type Deps struct {
	Registry   *session.Registry
	Sync       *session.Synchronizer
	Terminal   *render.Terminal
	HTML       *render.HTML
	Loader     loader.Loader
	Watcher    *watch.Watcher
	Logger     *slog.Logger
	SaveConfig func(config.Config) error
}

const (
	minRenderWidth  = 40
	maxRenderWidth  = 240
	renderWidthStep = 10
)

type mode string

const (
	modeBrowse mode = "browse"
	modeOpen   mode = "open"
)

// App is the bubbletea model for the viewer.
type App struct {
	ctx  context.Context
	cfg  config.Config
	deps Deps

	keys     keyMap
	help     help.Model
	viewport viewport.Model
	input    textinput.Model
	mode     mode

	status    string
	statusErr bool
	width     int
	height    int

	paths   map[string]string // document name -> file on disk
	queued  []string
	shownID string
}

// New builds the view over deps. Paths are loaded once the program starts.
func New(ctx context.Context, cfg config.Config, deps Deps, paths []string) *App {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Terminal == nil {
		deps.Terminal = render.NewTerminal(cfg.Render.Style, cfg.Render.Width, deps.Logger)
	}
	if deps.HTML == nil {
		deps.HTML = render.NewHTML(cfg.Render.Style)
	}
	in := textinput.New()
	in.Prompt = "open: "
	in.Placeholder = "paths or globs, space separated"

	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		deps:     deps,
		keys:     defaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 20),
		input:    in,
		mode:     modeBrowse,
		width:    80,
		height:   24,
		paths:    map[string]string{},
		queued:   paths,
	}
	if n := deps.Registry.Len(); n > 0 {
		a.status = fmt.Sprintf("restored %d document(s)", n)
	}
	a.layout()
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.openCmd(a.queued)}
	a.queued = nil
	if a.deps.Watcher != nil {
		cmds = append(cmds, waitForChange(a.deps.Watcher))
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.layout()
		return a, nil
	case tea.KeyMsg:
		if a.mode == modeOpen {
			return a.handleOpenKey(m)
		}
		return a.handleKey(m)
	case tea.MouseMsg:
		return a.handleMouse(m)
	case fileLoadedMsg:
		a.opened(m.File)
		return a, nil
	case loadFailedMsg:
		a.deps.Logger.Warn("load failed", slog.String("path", m.Path), slog.Any("error", m.Err))
		a.setError(m.Err.Error())
		return a, nil
	case fileChangedMsg:
		var cmd tea.Cmd
		if a.deps.Registry.IndexOf(a.nameForPath(string(m))) >= 0 {
			cmd = a.reloadCmd(string(m))
		}
		return a, tea.Batch(cmd, waitForChange(a.deps.Watcher))
	case fileReloadedMsg:
		a.reloaded(m.File)
		return a, nil
	case configSavedMsg:
		a.setStatus(fmt.Sprintf("render width %d saved", m.Width))
		return a, nil
	case exportDoneMsg:
		a.setStatus("exported " + m.Path)
		return a, nil
	case statusMsg:
		a.setStatus(string(m))
		return a, nil
	case errMsg:
		a.setError("error: " + m.Error())
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	reg := a.deps.Registry
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Open):
		a.mode = modeOpen
		a.input.Reset()
		a.layout()
		return a, a.input.Focus()
	case key.Matches(m, a.keys.Next):
		if n := reg.Len(); n > 0 {
			a.selectTab((reg.ActiveIndex() + 1) % n)
		}
	case key.Matches(m, a.keys.Prev):
		if n := reg.Len(); n > 0 {
			cur := reg.ActiveIndex()
			if cur <= 0 {
				cur = n
			}
			a.selectTab(cur - 1)
		}
	case key.Matches(m, a.keys.Jump):
		if i := int(m.String()[0] - '1'); i < reg.Len() {
			a.selectTab(i)
		}
	case key.Matches(m, a.keys.Close):
		if i := reg.ActiveIndex(); i != session.NoActive {
			a.closeTab(i)
		}
	case key.Matches(m, a.keys.CloseAll):
		a.closeAll()
	case key.Matches(m, a.keys.Export):
		doc, ok := reg.Current()
		if !ok {
			a.setError("nothing to export")
			return a, nil
		}
		return a, a.exportCmd(doc)
	case key.Matches(m, a.keys.Top):
		a.viewport.GotoTop()
	case key.Matches(m, a.keys.Bottom):
		a.viewport.GotoBottom()
	case key.Matches(m, a.keys.Narrower):
		return a, a.resizeRender(-renderWidthStep)
	case key.Matches(m, a.keys.Wider):
		return a, a.resizeRender(renderWidthStep)
	case key.Matches(m, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		a.layout()
	default:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(m)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleOpenKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.String() == "ctrl+c":
		return a, tea.Quit
	case key.Matches(m, a.keys.Cancel):
		a.leaveOpen()
		return a, nil
	case key.Matches(m, a.keys.Submit):
		args := strings.Fields(a.input.Value())
		a.leaveOpen()
		if len(args) == 0 {
			return a, nil
		}
		a.setStatus(fmt.Sprintf("loading %d item(s)...", len(args)))
		return a, a.openCmd(args)
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	return a, cmd
}

func (a *App) handleMouse(m tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.Y == 0 && m.Action == tea.MouseActionPress && m.Button == tea.MouseButtonLeft {
		docs := a.deps.Registry.Documents()
		_, hits := layoutTabs(docs, a.deps.Registry.ActiveIndex(), a.width)
		if idx, onClose, ok := hitTab(hits, m.X); ok {
			if onClose {
				a.closeTab(idx)
			} else {
				a.selectTab(idx)
			}
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(m)
	return a, cmd
}

func (a *App) leaveOpen() {
	a.mode = modeBrowse
	a.input.Blur()
	a.input.Reset()
	a.layout()
}

// opened applies one finished load: add or replace, select, persist.
func (a *App) opened(f loader.File) {
	reg := a.deps.Registry
	idx, isNew := reg.AddOrReplace(f.Name, f.Text)
	reg.Select(idx)
	a.track(f.Name, f.Path)
	if isNew {
		a.setStatus("opened " + f.Name)
	} else {
		a.setStatus("replaced " + f.Name)
	}
	a.persist()
	a.refresh()
}

// reloaded applies a watcher reload. The selection is left where it is.
func (a *App) reloaded(f loader.File) {
	reg := a.deps.Registry
	if reg.IndexOf(f.Name) < 0 {
		return
	}
	reg.AddOrReplace(f.Name, f.Text)
	a.setStatus("reloaded " + f.Name)
	a.persist()
	a.refresh()
}

func (a *App) selectTab(i int) {
	a.deps.Registry.Select(i)
	a.persist()
	a.refresh()
}

func (a *App) closeTab(i int) {
	reg := a.deps.Registry
	docs := reg.Documents()
	if i < 0 || i >= len(docs) {
		return
	}
	name := docs[i].Name
	reg.Close(i)
	a.untrack(name)
	a.setStatus("closed " + name)
	a.persist()
	a.refresh()
}

func (a *App) closeAll() {
	for name := range a.paths {
		a.untrack(name)
	}
	a.deps.Registry.Clear()
	a.setStatus("closed all documents")
	a.persist()
	a.refresh()
}

// resizeRender changes the configured wrap width and saves the config.
func (a *App) resizeRender(delta int) tea.Cmd {
	cur := a.cfg.Render.Width
	if cur <= 0 {
		cur = a.deps.Terminal.Width()
	}
	next := min(max(cur+delta, minRenderWidth), maxRenderWidth)
	if next == a.cfg.Render.Width {
		return nil
	}
	a.cfg.Render.Width = next
	a.layout()
	a.setStatus(fmt.Sprintf("render width %d", next))
	return saveConfigCmd(a.deps.SaveConfig, a.cfg)
}

func (a *App) persist() {
	a.deps.Sync.OnChange(a.ctx, a.deps.Registry)
	if err := a.deps.Sync.LastErr(); err != nil {
		a.setError("session not saved: " + err.Error())
	}
}

func (a *App) track(name, path string) {
	if path == "" {
		return
	}
	if old, ok := a.paths[name]; ok && old != path && a.deps.Watcher != nil {
		_ = a.deps.Watcher.Remove(old)
	}
	a.paths[name] = path
	if a.deps.Watcher == nil {
		return
	}
	if err := a.deps.Watcher.Add(path); err != nil {
		a.deps.Logger.Warn("watch failed", slog.String("path", path), slog.Any("error", err))
	}
}

func (a *App) untrack(name string) {
	path, ok := a.paths[name]
	if !ok {
		return
	}
	delete(a.paths, name)
	if a.deps.Watcher != nil {
		_ = a.deps.Watcher.Remove(path)
	}
}

func (a *App) nameForPath(path string) string {
	for name, p := range a.paths {
		if p == path {
			return name
		}
	}
	return ""
}

// refresh re-renders the active document into the viewport.
func (a *App) refresh() {
	doc, ok := a.deps.Registry.Current()
	if !ok {
		a.shownID = ""
		a.viewport.SetContent("")
		return
	}
	out, err := a.deps.Terminal.Render(doc.Content)
	if err != nil {
		a.deps.Logger.Warn("render failed", slog.String("name", doc.Name), slog.Any("error", err))
		out = doc.Content
	}
	a.viewport.SetContent(out)
	if doc.ID != a.shownID {
		a.viewport.GotoTop()
		a.shownID = doc.ID
	}
}

func (a *App) layout() {
	a.help.Width = a.width
	reserved := 1 + 1 + lipgloss.Height(a.help.View(a.keys))
	if a.mode == modeOpen {
		reserved++
	}
	a.viewport.Width = a.width
	a.viewport.Height = max(a.height-reserved, 1)
	a.input.Width = max(a.width-len(a.input.Prompt)-1, 10)

	w := a.width - 2
	if a.cfg.Render.Width > 0 {
		w = min(w, a.cfg.Render.Width)
	}
	a.deps.Terminal.SetWidth(w)
	a.refresh()
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(s string) {
	a.status = s
	a.statusErr = true
}

func (a *App) View() string {
	reg := a.deps.Registry
	tabs, _ := layoutTabs(reg.Documents(), reg.ActiveIndex(), a.width)

	var body string
	if _, ok := reg.Current(); ok {
		body = a.viewport.View()
	} else {
		body = a.renderEmpty()
	}

	parts := []string{tabs, body}
	if a.mode == modeOpen {
		parts = append(parts, a.input.View())
	}
	parts = append(parts, a.renderStatus(), a.help.View(a.keys))
	return strings.Join(parts, "\n")
}

func (a *App) renderEmpty() string {
	title := "No document open"
	if a.deps.Registry.Len() > 0 {
		title = "No tab selected"
	}
	msg := emptyTitleStyle.Render(title) + "\n" + emptyHintStyle.Render("press o to open a file")
	return lipgloss.Place(a.width, a.viewport.Height, lipgloss.Center, lipgloss.Center, msg)
}

func (a *App) renderStatus() string {
	style := statusBarStyle
	if a.statusErr {
		style = statusErrBarStyle
	}
	reg := a.deps.Registry
	pos := fmt.Sprintf("%d/%d", reg.ActiveIndex()+1, reg.Len())
	if reg.ActiveIndex() == session.NoActive {
		pos = fmt.Sprintf("-/%d", reg.Len())
	}
	text := ansi.Truncate(a.status, max(a.width-len(pos)-3, 0), "…")
	gap := max(a.width-ansi.StringWidth(text)-len(pos)-2, 1)
	return style.Render(" " + text + strings.Repeat(" ", gap) + pos + " ")
}
