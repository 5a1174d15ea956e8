// Package tui renders the dashboards in the terminal with termui: the REST
// threat feed, the managed store and the static platform overview.
package tui

import (
	"context"
	"fmt"
	"strconv"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/cybershield/intel/internal/dashboard"
	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/util"
	"github.com/cybershield/intel/internal/version"
)

const descriptionWidth = 60

// Header is the title line.
func Header(d *dashboard.FeedDashboard) string {
	sev, cat := d.Filters()
	source := "live"
	if d.UsingSamples() {
		source = "sample data"
	}
	return fmt.Sprintf("%s v%s  [%s]  severity: %s  category: %s  (s/c filter, r reload, q quit)",
		version.Name, version.Version, source, sev, cat)
}

// StatsLines renders the four stats tiles as text.
func StatsLines(s models.Stats) []string {
	return []string{
		fmt.Sprintf("Total: %d", s.TotalThreats),
		fmt.Sprintf("Critical: %d", s.CriticalThreats),
		fmt.Sprintf("Active: %d", s.ActiveIncidents),
		fmt.Sprintf("Avg Response: %s", s.AvgResponseTime),
	}
}

// ThreatRows builds the threat table, header first.
func ThreatRows(threats []models.FeedThreat) [][]string {
	rows := [][]string{{"Severity", "Score", "Category", "Title", "Description"}}
	for _, t := range threats {
		rows = append(rows, []string{
			t.Severity,
			strconv.Itoa(t.PriorityScore),
			t.Category,
			t.Title,
			util.Truncate(t.Description, descriptionWidth),
		})
	}
	if len(threats) == 0 {
		rows = append(rows, []string{"", "", "", "No threats match the current filters", ""})
	}
	return rows
}

// TrendSeries splits the trend chart into the total and critical series
// and their labels.
func TrendSeries(d *dashboard.FeedDashboard) (data [][]float64, labels []string) {
	trend := d.Trend()
	total := make([]float64, len(trend))
	critical := make([]float64, len(trend))
	labels = make([]string, len(trend))
	for i, p := range trend {
		total[i] = float64(p.Threats)
		critical[i] = float64(p.Critical)
		labels[i] = p.Day
	}
	return [][]float64{total, critical}, labels
}

// CategoryBars returns the category chart values and labels.
func CategoryBars(d *dashboard.FeedDashboard) (data []float64, labels []string) {
	for _, c := range d.Categories() {
		data = append(data, float64(c.Count))
		labels = append(labels, c.Name)
	}
	return data, labels
}

// SeverityColor maps a severity label to a row colour.
func SeverityColor(severity string) ui.Color {
	switch severity {
	case "Critical":
		return ui.ColorRed
	case "High":
		return ui.ColorMagenta
	case "Medium":
		return ui.ColorYellow
	}
	return ui.ColorGreen
}

// BadgeColor maps a badge variant to a row colour.
func BadgeColor(b dashboard.Badge) ui.Color {
	switch b.Variant {
	case dashboard.VariantDestructive:
		return ui.ColorRed
	case dashboard.VariantSecondary:
		return ui.ColorMagenta
	case dashboard.VariantDefault:
		return ui.ColorYellow
	}
	return ui.ColorGreen
}

type view struct {
	screens *widgets.Paragraph
	status  *widgets.Paragraph

	header   *widgets.Paragraph
	stats    *widgets.Paragraph
	trend    *widgets.Plot
	category *widgets.BarChart
	table    *widgets.Table

	tiles  *widgets.Paragraph
	cards  *widgets.Table
	actors *widgets.Paragraph
	form   *widgets.Paragraph

	tabs       *widgets.Paragraph
	highlights *widgets.Paragraph
	recent     *widgets.Table
	vulns      *widgets.BarChart
	activity   *widgets.BarChart
	analysis   *widgets.Paragraph
}

func newView() *view {
	v := &view{
		screens:    widgets.NewParagraph(),
		status:     widgets.NewParagraph(),
		header:     widgets.NewParagraph(),
		stats:      widgets.NewParagraph(),
		trend:      widgets.NewPlot(),
		category:   widgets.NewBarChart(),
		table:      widgets.NewTable(),
		tiles:      widgets.NewParagraph(),
		cards:      widgets.NewTable(),
		actors:     widgets.NewParagraph(),
		form:       widgets.NewParagraph(),
		tabs:       widgets.NewParagraph(),
		highlights: widgets.NewParagraph(),
		recent:     widgets.NewTable(),
		vulns:      widgets.NewBarChart(),
		activity:   widgets.NewBarChart(),
		analysis:   widgets.NewParagraph(),
	}
	for _, p := range []*widgets.Paragraph{v.screens, v.status, v.header, v.tabs} {
		p.Border = false
	}
	v.stats.Title = "Stats"
	v.stats.BorderStyle.Fg = ui.ColorCyan
	v.trend.Title = "Threat Trends"
	v.trend.LineColors = []ui.Color{ui.ColorBlue, ui.ColorRed}
	v.trend.AxesColor = ui.ColorWhite
	v.category.Title = "Threats by Category"
	v.category.BarWidth = 9
	v.category.BarColors = []ui.Color{ui.ColorMagenta}
	for _, t := range []*widgets.Table{v.table, v.cards, v.recent} {
		t.TextStyle = ui.NewStyle(ui.ColorWhite)
		t.RowSeparator = false
		t.FillRow = true
	}
	v.table.Title = "Threats"

	v.tiles.Title = "Overview"
	v.tiles.BorderStyle.Fg = ui.ColorCyan
	v.cards.Title = "Threats (" + ManagedHelp + ")"
	v.actors.Title = "Threat Actors"
	v.form.BorderStyle.Fg = ui.ColorYellow

	v.highlights.Title = "Highlights"
	v.recent.Title = "Recent Threats"
	v.vulns.Title = "Vulnerabilities per Week"
	v.vulns.BarWidth = 8
	v.vulns.BarColors = []ui.Color{ui.ColorBlue}
	v.activity.Title = "Actor Activity"
	v.activity.BarWidth = 10
	v.activity.BarColors = []ui.Color{ui.ColorRed}
	v.analysis.Title = "CVE Analysis"
	return v
}

func (v *view) layout(w, h int) {
	v.screens.SetRect(0, 0, w, 1)
	v.status.SetRect(0, h-1, w, h)

	v.header.SetRect(0, 1, w, 2)
	v.stats.SetRect(0, 2, w/4, 15)
	v.trend.SetRect(w/4, 2, w*5/8, 15)
	v.category.SetRect(w*5/8, 2, w, 15)
	v.table.SetRect(0, 15, w, h-1)

	v.tiles.SetRect(0, 1, w*2/3, 7)
	v.actors.SetRect(w*2/3, 1, w, h-1)
	v.cards.SetRect(0, 7, w*2/3, h-1)
	v.form.SetRect(w/6, h/6, w*5/6, h/6+13)

	v.tabs.SetRect(0, 1, w, 2)
	v.highlights.SetRect(0, 2, w/3, 8)
	v.recent.SetRect(w/3, 2, w, 8)
	v.vulns.SetRect(0, 8, w/2, h-1)
	v.activity.SetRect(w/2, 8, w, h-1)
	v.analysis.SetRect(0, 2, w, h-1)
}

func joinLines(lines []string) string {
	text := ""
	for _, line := range lines {
		text += line + "\n"
	}
	return text
}

func (v *view) update(a *App) {
	v.screens.Text = ScreenBar(a.Screen())
	v.status.Text = a.Status.Text()

	switch a.Screen() {
	case ScreenFeed:
		v.updateFeed(a.Feed)
	case ScreenManaged:
		v.updateManaged(a)
	case ScreenPlatform:
		v.updatePlatform(a)
	}
}

func (v *view) updateFeed(d *dashboard.FeedDashboard) {
	v.header.Text = Header(d)
	v.stats.Text = joinLines(StatsLines(d.Stats()))

	data, labels := TrendSeries(d)
	if len(labels) > 1 {
		v.trend.Data = data
		v.trend.DataLabels = labels
	}
	v.category.Data, v.category.Labels = CategoryBars(d)

	threats := d.Threats()
	v.table.Rows = ThreatRows(threats)
	v.table.RowStyles = map[int]ui.Style{0: ui.NewStyle(ui.ColorWhite, ui.ColorClear, ui.ModifierBold)}
	for i, t := range threats {
		v.table.RowStyles[i+1] = ui.NewStyle(SeverityColor(t.Severity))
	}
}

func (v *view) updateManaged(a *App) {
	page := a.Board.View()
	v.tiles.Text = joinLines(TileLines(page))
	v.actors.Text = joinLines(ActorLines(page))
	v.cards.Rows = ThreatCardRows(page, a.Selected())
	v.cards.RowStyles = map[int]ui.Style{0: ui.NewStyle(ui.ColorWhite, ui.ColorClear, ui.ModifierBold)}
	if !page.Loading.Threats {
		for i, c := range page.Threats {
			style := ui.NewStyle(BadgeColor(c.Severity))
			if i == a.Selected() {
				style.Modifier = ui.ModifierReverse
			}
			v.cards.RowStyles[i+1] = style
		}
	}
	if e := a.Editor(); e != nil {
		v.form.Title = e.Form().Title()
		v.form.Text = joinLines(e.Lines())
	}
}

func (v *view) updatePlatform(a *App) {
	p := a.Platform
	v.tabs.Text = PlatformTabBar(p)
	if p.ActiveTab() == dashboard.TabAnalysis {
		v.analysis.Text = joinLines(AnalysisLines(p, a.analysis))
		return
	}
	v.highlights.Text = joinLines(HighlightLines(p))
	v.recent.Rows = RecentThreatRows(p)
	v.vulns.Data, v.vulns.Labels = VulnBars(p)
	v.activity.Data, v.activity.Labels = ActorBars(p)
}

func (v *view) render(a *App) {
	items := []ui.Drawable{v.screens, v.status}
	switch a.Screen() {
	case ScreenFeed:
		items = append(items, v.header, v.stats, v.trend, v.category, v.table)
	case ScreenManaged:
		items = append(items, v.tiles, v.cards, v.actors)
		if a.Editor() != nil {
			items = append(items, v.form)
		}
	case ScreenPlatform:
		items = append(items, v.tabs)
		if a.Platform.ActiveTab() == dashboard.TabAnalysis {
			items = append(items, v.analysis)
		} else {
			items = append(items, v.highlights, v.recent, v.vulns, v.activity)
		}
	}
	ui.Clear()
	ui.Render(items...)
}

// Run draws the app and handles keys until q, Ctrl-C or ctx is done. The
// managed store loads in the background so its skeletons show first.
// reloads delivers external refresh requests (e.g. sample file changes).
func Run(ctx context.Context, a *App, reloads <-chan struct{}) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer ui.Close()

	v := newView()
	w, h := ui.TerminalDimensions()
	v.layout(w, h)

	boardDone := make(chan struct{}, 1)
	refreshBoard := func() {
		go func() {
			_ = a.Board.Refresh(ctx)
			select {
			case boardDone <- struct{}{}:
			default:
			}
		}()
	}

	refreshBoard()
	a.Feed.Load(ctx)
	v.update(a)
	v.render(a)

	events := ui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reloads:
			a.Feed.Load(ctx)
		case <-boardDone:
		case <-a.Status.Changed():
		case e := <-events:
			if e.ID == "<Resize>" {
				payload := e.Payload.(ui.Resize)
				v.layout(payload.Width, payload.Height)
				break
			}
			switch a.handleKey(ctx, e.ID) {
			case cmdQuit:
				return nil
			case cmdRefreshBoard:
				refreshBoard()
			}
		}
		v.update(a)
		v.render(a)
	}
}
