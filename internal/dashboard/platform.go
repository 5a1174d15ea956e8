package dashboard

import (
	"github.com/cybershield/intel/internal/samples"
	"github.com/cybershield/intel/internal/util"
)

const (
	TabOverview = "overview"
	TabAnalysis = "analysis"
)

var platformTabs = []string{TabOverview, TabAnalysis}

// AnalysisPlaceholder is shown until analysis is wired to a backend.
const AnalysisPlaceholder = "(Results will appear here after analysis)"

// Platform is the static intelligence overview. It never performs I/O.
type Platform struct {
	data      samples.Provider
	activeTab string
	query     string
}

func NewPlatform(provider samples.Provider) *Platform {
	if provider == nil {
		provider = samples.Static(samples.Default())
	}
	return &Platform{data: provider, activeTab: TabOverview}
}

func (p *Platform) Tabs() []string { return platformTabs }

func (p *Platform) ActiveTab() string { return p.activeTab }

// SelectTab switches tabs; unknown names are ignored.
func (p *Platform) SelectTab(tab string) {
	for _, t := range platformTabs {
		if t == tab {
			p.activeTab = tab
			return
		}
	}
}

// TabLabel capitalizes a tab name for display.
func TabLabel(tab string) string {
	return util.UpperFirst(tab)
}

func (p *Platform) Highlights() []samples.Highlight {
	return p.data.Current().Platform.Highlights
}

func (p *Platform) RecentThreats() []samples.RecentThreat {
	return p.data.Current().Platform.RecentThreats
}

func (p *Platform) VulnTrends() []samples.VulnTrend {
	return p.data.Current().Platform.VulnTrends
}

func (p *Platform) ActorActivity() []samples.ActorActivity {
	return p.data.Current().Platform.Actors
}

// SetQuery records the CVE typed into the analysis box.
func (p *Platform) SetQuery(q string) { p.query = q }

func (p *Platform) Query() string { return p.query }

// Analyze is a stub: it accepts the query and returns the placeholder
// result.
func (p *Platform) Analyze() string {
	return AnalysisPlaceholder
}
