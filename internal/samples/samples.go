// Package samples holds the fixed dataset shown when the intelligence API
// is unreachable, plus the static chart and platform data.
package samples

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cybershield/intel/internal/models"
)

type TrendPoint struct {
	Day      string `json:"day" yaml:"day"`
	Threats  int    `json:"threats" yaml:"threats"`
	Critical int    `json:"critical" yaml:"critical"`
}

type CategoryCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Highlight is a headline tile on the platform overview.
type Highlight struct {
	Title   string `json:"title" yaml:"title"`
	Value   int    `json:"value" yaml:"value"`
	Caption string `json:"caption" yaml:"caption"`
}

type RecentThreat struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Severity string `json:"severity" yaml:"severity"`
	Source   string `json:"source" yaml:"source"`
	Date     string `json:"date" yaml:"date"`
}

type VulnTrend struct {
	Week  string `json:"week" yaml:"week"`
	Vulns int    `json:"vulns" yaml:"vulns"`
}

type ActorActivity struct {
	Name      string `json:"name" yaml:"name"`
	Incidents int    `json:"incidents" yaml:"incidents"`
}

type Platform struct {
	Highlights    []Highlight     `json:"highlights" yaml:"highlights"`
	RecentThreats []RecentThreat  `json:"recentThreats" yaml:"recentThreats"`
	VulnTrends    []VulnTrend     `json:"vulnTrends" yaml:"vulnTrends"`
	Actors        []ActorActivity `json:"actors" yaml:"actors"`
}

// Dataset is everything the dashboards can render without a backend.
type Dataset struct {
	Threats    []models.FeedThreat `json:"threats" yaml:"threats"`
	Stats      models.Stats        `json:"stats" yaml:"stats"`
	Trend      []TrendPoint        `json:"trend" yaml:"trend"`
	Categories []CategoryCount     `json:"categories" yaml:"categories"`
	Platform   Platform            `json:"platform" yaml:"platform"`
}

// Provider returns the dataset currently in effect.
type Provider interface {
	Current() Dataset
}

type static Dataset

func (s static) Current() Dataset { return Dataset(s).Clone() }

// Static wraps a fixed dataset as a Provider.
func Static(d Dataset) Provider { return static(d) }

// Default returns a fresh copy of the built-in dataset.
func Default() Dataset {
	return Dataset{
		Threats: []models.FeedThreat{
			{
				ID:              "1",
				Title:           "Zero-day in Apache Log4j",
				Description:     "Remote code execution vulnerability affecting multiple enterprise systems",
				Severity:        "Critical",
				PriorityScore:   96,
				Category:        "CVE",
				Date:            "2023-11-15",
				Status:          "New",
				AffectedSystems: 12000,
				ThreatActor:     "APT29",
				Mitigation:      "Apply patches immediately, monitor network traffic",
			},
			{
				ID:              "2",
				Title:           "Phishing Campaign Targeting Financial Sector",
				Description:     "Sophisticated phishing emails impersonating banking institutions",
				Severity:        "High",
				PriorityScore:   88,
				Category:        "Phishing",
				Date:            "2023-11-14",
				Status:          "Active",
				AffectedSystems: 3500,
				ThreatActor:     "FIN7",
				Mitigation:      "Implement email filtering, user awareness training",
			},
		},
		Stats: models.Stats{TotalThreats: 24, CriticalThreats: 9, ActiveIncidents: 3, AvgResponseTime: "2.4h"},
		Trend: []TrendPoint{
			{Day: "Nov 10", Threats: 12, Critical: 3},
			{Day: "Nov 11", Threats: 18, Critical: 5},
			{Day: "Nov 12", Threats: 15, Critical: 4},
			{Day: "Nov 13", Threats: 22, Critical: 7},
			{Day: "Nov 14", Threats: 19, Critical: 6},
			{Day: "Nov 15", Threats: 26, Critical: 9},
		},
		Categories: []CategoryCount{
			{Name: "CVE", Count: 12},
			{Name: "Phishing", Count: 8},
			{Name: "Ransomware", Count: 6},
			{Name: "DDoS", Count: 4},
			{Name: "Data Breach", Count: 7},
		},
		Platform: Platform{
			Highlights: []Highlight{
				{Title: "Critical Threats", Value: 12, Caption: "Active in past 24h"},
				{Title: "Vulnerabilities", Value: 47, Caption: "New CVEs this week"},
				{Title: "Threat Actors", Value: 8, Caption: "Actively monitored"},
			},
			RecentThreats: []RecentThreat{
				{ID: 1, Name: "CVE-2024-3400", Severity: "Critical", Source: "Palo Alto Advisory", Date: "2024-04-12"},
				{ID: 2, Name: "APT29 Phishing", Severity: "High", Source: "OSINT Feeds", Date: "2024-04-11"},
				{ID: 3, Name: "Ransomware Expansion", Severity: "Medium", Source: "Dark Web Monitoring", Date: "2024-04-10"},
			},
			VulnTrends: []VulnTrend{
				{Week: "Week 1", Vulns: 12},
				{Week: "Week 2", Vulns: 25},
				{Week: "Week 3", Vulns: 18},
				{Week: "Week 4", Vulns: 30},
			},
			Actors: []ActorActivity{
				{Name: "APT29", Incidents: 14},
				{Name: "Conti", Incidents: 9},
				{Name: "Lapsus$", Incidents: 6},
				{Name: "LockBit", Incidents: 12},
			},
		},
	}
}

// Clone returns a deep copy so callers cannot mutate shared slices.
func (d Dataset) Clone() Dataset {
	out := d
	out.Threats = append([]models.FeedThreat(nil), d.Threats...)
	out.Trend = append([]TrendPoint(nil), d.Trend...)
	out.Categories = append([]CategoryCount(nil), d.Categories...)
	out.Platform.Highlights = append([]Highlight(nil), d.Platform.Highlights...)
	out.Platform.RecentThreats = append([]RecentThreat(nil), d.Platform.RecentThreats...)
	out.Platform.VulnTrends = append([]VulnTrend(nil), d.Platform.VulnTrends...)
	out.Platform.Actors = append([]ActorActivity(nil), d.Platform.Actors...)
	return out
}

// ErrEmptyFile is returned for a dataset file with no content, which is
// also what a watcher sees mid-write.
var ErrEmptyFile = errors.New("sample data file is empty")

// Load reads a YAML dataset from path. Sections missing from the file keep
// their built-in values.
func Load(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read sample data: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Dataset{}, ErrEmptyFile
	}
	return Parse(raw)
}

// Parse decodes a YAML dataset overlaid on Default.
func Parse(raw []byte) (Dataset, error) {
	var file Dataset
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Dataset{}, fmt.Errorf("parse sample data: %w", err)
	}

	d := Default()
	if len(file.Threats) > 0 {
		d.Threats = file.Threats
	}
	if file.Stats != (models.Stats{}) {
		d.Stats = file.Stats
	}
	if len(file.Trend) > 0 {
		d.Trend = file.Trend
	}
	if len(file.Categories) > 0 {
		d.Categories = file.Categories
	}
	if len(file.Platform.Highlights) > 0 {
		d.Platform.Highlights = file.Platform.Highlights
	}
	if len(file.Platform.RecentThreats) > 0 {
		d.Platform.RecentThreats = file.Platform.RecentThreats
	}
	if len(file.Platform.VulnTrends) > 0 {
		d.Platform.VulnTrends = file.Platform.VulnTrends
	}
	if len(file.Platform.Actors) > 0 {
		d.Platform.Actors = file.Platform.Actors
	}
	return d, nil
}
