package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mdtabs/internal/config"
	"github.com/jask/mdtabs/internal/loader"
	"github.com/jask/mdtabs/internal/session"
	"github.com/jask/mdtabs/internal/watch"
)

type fileLoadedMsg struct{ File loader.File }

type loadFailedMsg struct {
	Path string
	Err  error
}

type fileChangedMsg string

type fileReloadedMsg struct{ File loader.File }

type exportDoneMsg struct{ Path string }

type configSavedMsg struct{ Width int }

type statusMsg string

type errMsg struct{ error }

// openCmd starts one independent load per expanded path. Completions arrive
// in any order and each is applied on its own.
func (a *App) openCmd(args []string) tea.Cmd {
	if len(args) == 0 {
		return nil
	}
	paths, errs := loader.Expand(args)
	cmds := make([]tea.Cmd, 0, len(paths)+len(errs))
	for _, err := range errs {
		err := err
		cmds = append(cmds, func() tea.Msg { return loadFailedMsg{Err: err} })
	}
	for _, p := range paths {
		cmds = append(cmds, a.loadCmd(p))
	}
	return tea.Batch(cmds...)
}

func (a *App) loadCmd(path string) tea.Cmd {
	ctx, l := a.ctx, a.deps.Loader
	return func() tea.Msg {
		f, err := l.Load(ctx, path)
		if err != nil {
			return loadFailedMsg{Path: path, Err: err}
		}
		return fileLoadedMsg{File: f}
	}
}

func (a *App) reloadCmd(path string) tea.Cmd {
	ctx, l := a.ctx, a.deps.Loader
	return func() tea.Msg {
		f, err := l.Load(ctx, path)
		if err != nil {
			return loadFailedMsg{Path: path, Err: fmt.Errorf("reload: %w", err)}
		}
		return fileReloadedMsg{File: f}
	}
}

func waitForChange(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return fileChangedMsg(path)
	}
}

func saveConfigCmd(save func(config.Config) error, cfg config.Config) tea.Cmd {
	if save == nil {
		return nil
	}
	return func() tea.Msg {
		if err := save(cfg); err != nil {
			return errMsg{fmt.Errorf("save config: %w", err)}
		}
		return configSavedMsg{Width: cfg.Render.Width}
	}
}

func exportName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = "document"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
}

func (a *App) exportCmd(doc session.Document) tea.Cmd {
	dir, h := a.cfg.Export.Dir, a.deps.HTML
	return func() tea.Msg {
		page, err := h.Page(doc.Name, doc.Content)
		if err != nil {
			return errMsg{err}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errMsg{fmt.Errorf("mkdir export dir: %w", err)}
		}
		path := filepath.Join(dir, exportName(doc.Name))
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, []byte(page), 0o644); err != nil {
			return errMsg{fmt.Errorf("write export: %w", err)}
		}
		if err := os.Rename(tmp, path); err != nil {
			return errMsg{fmt.Errorf("write export: %w", err)}
		}
		return exportDoneMsg{Path: path}
	}
}
