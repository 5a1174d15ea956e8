package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatform(t *testing.T) {
	p := NewPlatform(nil)
	assert.Equal(t, TabOverview, p.ActiveTab())
	assert.Equal(t, []string{"overview", "analysis"}, p.Tabs())

	p.SelectTab("settings")
	assert.Equal(t, TabOverview, p.ActiveTab())
	p.SelectTab(TabAnalysis)
	assert.Equal(t, TabAnalysis, p.ActiveTab())
	assert.Equal(t, "Analysis", TabLabel(p.ActiveTab()))
	assert.Equal(t, "Übersicht", TabLabel("übersicht"))
	assert.Empty(t, TabLabel(""))

	assert.Len(t, p.Highlights(), 3)
	assert.Equal(t, "CVE-2024-3400", p.RecentThreats()[0].Name)
	assert.Len(t, p.VulnTrends(), 4)
	assert.Equal(t, "LockBit", p.ActorActivity()[3].Name)

	p.SetQuery("CVE-2024-3400")
	assert.Equal(t, "CVE-2024-3400", p.Query())
	assert.Equal(t, AnalysisPlaceholder, p.Analyze())
}
