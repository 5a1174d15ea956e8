package tui

import (
	"fmt"

	"github.com/cybershield/intel/internal/dashboard"
	"github.com/cybershield/intel/internal/util"
)

const (
	skeleton      = "░░░░░░░░░░░░"
	skeletonRows  = 3
	cardTitleWide = 40
)

var trendArrows = map[dashboard.Trend]string{
	dashboard.TrendUp:     "▲",
	dashboard.TrendDown:   "▼",
	dashboard.TrendStable: "■",
}

// TileLines renders the four headline tiles, or skeletons while the
// threats or metrics are still loading.
func TileLines(v dashboard.View) []string {
	if v.Loading.Threats || v.Loading.Metrics {
		lines := make([]string, 4)
		for i := range lines {
			lines[i] = skeleton
		}
		return lines
	}
	lines := make([]string, 0, len(v.Tiles))
	for _, t := range v.Tiles {
		lines = append(lines, fmt.Sprintf("%s: %s  %s %s", t.Title, t.Value, trendArrows[t.Trend], t.Change))
	}
	return lines
}

// ThreatCardRows builds the managed threat table, header first. selected
// marks the highlighted card.
func ThreatCardRows(v dashboard.View, selected int) [][]string {
	rows := [][]string{{"", "Severity", "Status", "Title", "Category", "Source", "Affected", "Created"}}
	if v.Loading.Threats {
		for i := 0; i < skeletonRows; i++ {
			rows = append(rows, []string{"", skeleton, skeleton, skeleton, skeleton, skeleton, skeleton, skeleton})
		}
		return rows
	}
	if len(v.Threats) == 0 {
		return append(rows, []string{"", "", "", "No threats recorded. Press a to add one", "", "", "", ""})
	}
	for i, c := range v.Threats {
		marker := ""
		if i == selected {
			marker = ">"
		}
		rows = append(rows, []string{
			marker,
			c.Severity.Label,
			c.Status.Label,
			util.Truncate(c.Title, cardTitleWide),
			c.Category,
			c.Source,
			c.Affected,
			c.Created,
		})
	}
	return rows
}

var indicatorColors = map[string]string{
	dashboard.IndicatorRed:    "red",
	dashboard.IndicatorYellow: "yellow",
	dashboard.IndicatorGray:   "white",
}

// ActorLines lists the tracked actors and the mitigation rate.
func ActorLines(v dashboard.View) []string {
	if v.Loading.Actors {
		return []string{skeleton, skeleton, skeleton}
	}
	var lines []string
	for _, a := range v.Actors {
		lines = append(lines, fmt.Sprintf("[●](fg:%s) %s  %s  %s", indicatorColors[a.Indicator], a.Name, a.Country, a.Activity))
	}
	if len(lines) == 0 {
		lines = append(lines, "No threat actors tracked")
	}
	if !v.Loading.Threats {
		lines = append(lines, "", fmt.Sprintf("Mitigation rate: %s%%", v.MitigationRate))
	}
	return lines
}

// PlatformTabBar shows the platform tabs with the active one bracketed.
func PlatformTabBar(p *dashboard.Platform) string {
	bar := ""
	for _, tab := range p.Tabs() {
		label := dashboard.TabLabel(tab)
		if tab == p.ActiveTab() {
			label = "[" + label + "]"
		}
		bar += label + "  "
	}
	return bar + "(Left/Right switch tab)"
}

// HighlightLines renders the overview highlight cards.
func HighlightLines(p *dashboard.Platform) []string {
	var lines []string
	for _, h := range p.Highlights() {
		lines = append(lines, fmt.Sprintf("%s: %d  %s", h.Title, h.Value, h.Caption))
	}
	return lines
}

// RecentThreatRows builds the recent threats table, header first.
func RecentThreatRows(p *dashboard.Platform) [][]string {
	rows := [][]string{{"Name", "Severity", "Source", "Date"}}
	for _, t := range p.RecentThreats() {
		rows = append(rows, []string{t.Name, t.Severity, t.Source, t.Date})
	}
	return rows
}

// VulnBars returns the weekly vulnerability counts and labels.
func VulnBars(p *dashboard.Platform) (data []float64, labels []string) {
	for _, v := range p.VulnTrends() {
		data = append(data, float64(v.Vulns))
		labels = append(labels, v.Week)
	}
	return data, labels
}

// ActorBars returns the incident counts per actor and labels.
func ActorBars(p *dashboard.Platform) (data []float64, labels []string) {
	for _, a := range p.ActorActivity() {
		data = append(data, float64(a.Incidents))
		labels = append(labels, a.Name)
	}
	return data, labels
}

// AnalysisLines renders the CVE analysis tab.
func AnalysisLines(p *dashboard.Platform, result string) []string {
	if result == "" {
		result = dashboard.AnalysisPlaceholder
	}
	return []string{
		"CVE: " + p.Query() + "_",
		"",
		"Type a CVE ID and press Enter to analyze.",
		"",
		result,
	}
}
