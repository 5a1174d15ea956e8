package tui

import (
	"context"
	"strings"

	"github.com/cybershield/intel/internal/dashboard"
)

const (
	ScreenFeed = iota
	ScreenManaged
	ScreenPlatform
)

var screenNames = []string{"Threat Feed", "Managed Store", "Platform"}

type command int

const (
	cmdNone command = iota
	cmdQuit
	cmdRefreshBoard
)

// App holds the three screens and the shared status line. Its key
// handling runs on the event loop goroutine only.
type App struct {
	Feed     *dashboard.FeedDashboard
	Board    *dashboard.Board
	Platform *dashboard.Platform
	Status   *StatusLine

	screen   int
	selected int
	editor   *FormEditor
	analysis string
}

func NewApp(feed *dashboard.FeedDashboard, board *dashboard.Board, platform *dashboard.Platform, status *StatusLine) *App {
	if status == nil {
		status = NewStatusLine()
	}
	return &App{Feed: feed, Board: board, Platform: platform, Status: status}
}

func (a *App) Screen() int { return a.screen }

func (a *App) Selected() int { return a.selected }

// Editor is the open threat form, nil when closed.
func (a *App) Editor() *FormEditor { return a.editor }

// ScreenBar is the top line naming every screen, active one bracketed.
func ScreenBar(active int) string {
	parts := make([]string, len(screenNames))
	for i, name := range screenNames {
		if i == active {
			name = "[" + name + "]"
		}
		parts[i] = name
	}
	return strings.Join(parts, "  ") + "  (Tab switch, q quit)"
}

// ManagedHelp lists the managed screen keys.
const ManagedHelp = "j/k select, a add, e edit, d delete, r refresh"

func (a *App) handleKey(ctx context.Context, id string) command {
	if id == "<C-c>" {
		return cmdQuit
	}
	if a.editor != nil {
		a.formKey(ctx, id)
		return cmdNone
	}
	if a.screen == ScreenPlatform && a.Platform.ActiveTab() == dashboard.TabAnalysis && a.analysisKey(id) {
		return cmdNone
	}

	switch id {
	case "q":
		return cmdQuit
	case "<Tab>":
		a.screen = (a.screen + 1) % len(screenNames)
		return cmdNone
	}

	switch a.screen {
	case ScreenFeed:
		a.feedKey(ctx, id)
	case ScreenManaged:
		return a.managedKey(ctx, id)
	case ScreenPlatform:
		a.platformKey(id)
	}
	return cmdNone
}

func (a *App) feedKey(ctx context.Context, id string) {
	switch id {
	case "s":
		sev, _ := a.Feed.Filters()
		a.Feed.SetSeverityFilter(dashboard.Next(dashboard.SeverityFilters, sev))
	case "c":
		_, cat := a.Feed.Filters()
		a.Feed.SetCategoryFilter(dashboard.Next(dashboard.CategoryFilters, cat))
	case "r":
		a.Feed.Load(ctx)
	}
}

func (a *App) managedKey(ctx context.Context, id string) command {
	threats := a.Board.Threats.Threats()
	switch id {
	case "j", "<Down>":
		if a.selected < len(threats)-1 {
			a.selected++
		}
	case "k", "<Up>":
		if a.selected > 0 {
			a.selected--
		}
	case "a":
		a.openForm(dashboard.NewThreatForm(nil))
	case "e":
		if a.selected < len(threats) {
			a.openForm(dashboard.NewThreatForm(&threats[a.selected]))
		}
	case "d":
		if a.selected < len(threats) {
			if err := a.Board.Threats.Delete(ctx, threats[a.selected].ID); err == nil {
				a.clampSelection()
			}
		}
	case "r":
		return cmdRefreshBoard
	}
	return cmdNone
}

func (a *App) openForm(form *dashboard.ThreatForm) {
	form.Open()
	a.editor = NewFormEditor(form)
}

func (a *App) formKey(ctx context.Context, id string) {
	if id == "<Escape>" {
		a.editor.Form().Close()
		a.editor = nil
		return
	}
	if !a.editor.Key(id) {
		return
	}
	// A failed save keeps the dialog open with its values; the hook has
	// already raised the error toast.
	if _, err := a.editor.Form().Submit(ctx, a.Board.Threats); err == nil {
		a.editor = nil
		a.clampSelection()
	}
}

func (a *App) clampSelection() {
	n := len(a.Board.Threats.Threats())
	if a.selected >= n {
		a.selected = n - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}
}

func (a *App) platformKey(id string) {
	tabs := a.Platform.Tabs()
	current := 0
	for i, t := range tabs {
		if t == a.Platform.ActiveTab() {
			current = i
		}
	}
	switch id {
	case "<Right>":
		a.Platform.SelectTab(tabs[(current+1)%len(tabs)])
	case "<Left>":
		a.Platform.SelectTab(tabs[(current+len(tabs)-1)%len(tabs)])
	}
}

// analysisKey types into the CVE box. It reports whether it consumed the
// key; q, Tab and the arrows stay global.
func (a *App) analysisKey(id string) bool {
	switch id {
	case "q", "<Tab>", "<Left>", "<Right>":
		return false
	case "<Enter>":
		a.analysis = a.Platform.Analyze()
		return true
	}
	next := editText(a.Platform.Query(), id)
	if next == a.Platform.Query() && id != "<Backspace>" {
		return false
	}
	a.Platform.SetQuery(next)
	return true
}
