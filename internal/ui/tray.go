package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/store"
	"github.com/heimdex/heimdex-editor/internal/suggest"
)

// Editor is the part of the editing session the tray drives.
type Editor interface {
	Undo() (bool, error)
	Redo() (bool, error)
	History() (undo, redo []string, err error)
	OnCommit(fn func(history.Event))
	Project() *store.Project
	SyncStatus() editor.SyncStatus
}

// Suggestions is a marker source that reports reloads.
type Suggestions interface {
	Markers() []suggest.Marker
	OnChange(fn func([]suggest.Marker))
}

type Tray struct {
	editor Editor
	logger *slog.Logger

	statusItem  *systray.MenuItem
	projectItem *systray.MenuItem
	suggestItem *systray.MenuItem
	undoItem    *systray.MenuItem
	redoItem    *systray.MenuItem

	mu          sync.Mutex
	suggestions int
	refresh     chan struct{}

	onQuit func()
}

type TrayConfig struct {
	Editor Editor
	// Suggestions is optional.
	Suggestions Suggestions
	Logger      *slog.Logger
	OnQuit      func()
}

func NewTray(cfg TrayConfig) *Tray {
	t := &Tray{
		editor:  cfg.Editor,
		logger:  cfg.Logger,
		refresh: make(chan struct{}, 1),
		onQuit:  cfg.OnQuit,
	}
	// Commit listeners run inside the session lock, so only signal here.
	cfg.Editor.OnCommit(func(history.Event) { t.requestRefresh() })
	if cfg.Suggestions != nil {
		t.suggestions = len(cfg.Suggestions.Markers())
		cfg.Suggestions.OnChange(func(markers []suggest.Marker) {
			t.mu.Lock()
			t.suggestions = len(markers)
			t.mu.Unlock()
			t.requestRefresh()
		})
	}
	return t
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Heimdex")
	systray.SetTooltip("Heimdex Editor")

	t.projectItem = systray.AddMenuItem("Project: none", "Open project")
	t.projectItem.Disable()

	t.statusItem = systray.AddMenuItem("Sync: idle", "Sync status")
	t.statusItem.Disable()

	t.suggestItem = systray.AddMenuItem(SuggestionsTitle(0), "Suggested cut points")
	t.suggestItem.Disable()

	systray.AddSeparator()

	t.undoItem = systray.AddMenuItem("Undo", "Undo the last edit")
	t.redoItem = systray.AddMenuItem("Redo", "Redo the last undone edit")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Heimdex Editor")

	t.update()

	go func() {
		for {
			select {
			case <-t.undoItem.ClickedCh:
				t.step("undo", t.editor.Undo)
			case <-t.redoItem.ClickedCh:
				t.step("redo", t.editor.Redo)
			case <-t.refresh:
				t.update()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) requestRefresh() {
	select {
	case t.refresh <- struct{}{}:
	default:
	}
}

func (t *Tray) step(name string, fn func() (bool, error)) {
	applied, err := fn()
	if err != nil {
		t.logger.Warn("tray "+name+" failed", "error", err)
		return
	}
	if !applied {
		t.logger.Debug("nothing to " + name)
	}
	t.update()
}

// update re-reads the session and retitles every item.
func (t *Tray) update() {
	t.mu.Lock()
	defer t.mu.Unlock()

	project := "none"
	if p := t.editor.Project(); p != nil {
		project = p.Name
	}
	t.projectItem.SetTitle("Project: " + project)
	t.statusItem.SetTitle(SyncTitle(t.editor.SyncStatus()))
	t.suggestItem.SetTitle(SuggestionsTitle(t.suggestions))

	undo, redo, _ := t.editor.History()
	setStep(t.undoItem, "Undo", undo)
	setStep(t.redoItem, "Redo", redo)
}

func setStep(item *systray.MenuItem, verb string, labels []string) {
	item.SetTitle(StepTitle(verb, labels))
	if len(labels) == 0 {
		item.Disable()
	} else {
		item.Enable()
	}
}

// StepTitle names the command an undo or redo would apply, e.g.
// "Undo Split video".
func StepTitle(verb string, labels []string) string {
	if len(labels) == 0 {
		return verb
	}
	return verb + " " + labels[0]
}

func SuggestionsTitle(n int) string {
	switch n {
	case 0:
		return "Suggestions: none"
	case 1:
		return "Suggestions: 1 marker"
	}
	return fmt.Sprintf("Suggestions: %d markers", n)
}

func SyncTitle(st editor.SyncStatus) string {
	if st.LastError != "" {
		if st.Retryable {
			return "Sync: retrying"
		}
		return "Sync: error"
	}
	var pending int
	for _, s := range st.Targets {
		pending += s.Pending
	}
	if pending > 0 {
		return fmt.Sprintf("Sync: %d pending", pending)
	}
	return "Sync: up to date"
}

func (t *Tray) Quit() {
	systray.Quit()
}
