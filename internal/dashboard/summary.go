package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/services"
)

// Trend is the direction arrow shown on a tile.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// DefaultSecurityScore is shown when no security score metric is recorded.
const DefaultSecurityScore = 8.7

const maxActorCards = 5

var printer = message.NewPrinter(language.English)

type MetricCard struct {
	Title  string `json:"title"`
	Value  string `json:"value"`
	Change string `json:"change"`
	Trend  Trend  `json:"trend"`
}

// Summary derives the four headline tiles in a single pass over threats.
func Summary(threats []models.Threat, metrics []models.SecurityMetric) []MetricCard {
	var critical, high, unmitigated int
	for _, t := range threats {
		switch t.Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityHigh:
			high++
		}
		if t.MitigationStatus == models.StatusUnmitigated {
			unmitigated++
		}
	}
	total := len(threats)

	active := MetricCard{
		Title:  "Active Threats",
		Value:  strconv.Itoa(total),
		Change: fmt.Sprintf("%d critical", critical),
		Trend:  TrendStable,
	}
	if critical > 0 {
		active.Trend = TrendUp
	}

	alerts := MetricCard{
		Title:  "Critical Alerts",
		Value:  strconv.Itoa(critical),
		Change: fmt.Sprintf("%d high", high),
		Trend:  TrendDown,
	}
	if critical > 5 {
		alerts.Trend = TrendUp
	}

	denominator := total
	if denominator == 0 {
		denominator = 1
	}
	open := MetricCard{
		Title:  "Unmitigated",
		Value:  strconv.Itoa(unmitigated),
		Change: fmt.Sprintf("%.1f%%", float64(unmitigated)/float64(denominator)*100),
		Trend:  TrendDown,
	}
	if float64(unmitigated) > float64(total)/2 {
		open.Trend = TrendUp
	}

	score := DefaultSecurityScore
	if m, ok := services.LookupMetric(metrics, "security score"); ok && m.MetricValue != 0 {
		score = m.MetricValue
	}
	posture := MetricCard{
		Title:  "Security Score",
		Value:  strconv.FormatFloat(score, 'f', -1, 64) + "/10",
		Change: "+0.2",
		Trend:  TrendUp,
	}

	return []MetricCard{active, alerts, open, posture}
}

// MitigationRate is the share of threats no longer unmitigated, "0" for an
// empty list.
func MitigationRate(threats []models.Threat) string {
	if len(threats) == 0 {
		return "0"
	}
	var open int
	for _, t := range threats {
		if t.MitigationStatus == models.StatusUnmitigated {
			open++
		}
	}
	return fmt.Sprintf("%.1f", float64(len(threats)-open)/float64(len(threats))*100)
}

type ThreatCard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    Badge  `json:"severity"`
	Category    string `json:"category"`
	Status      Badge  `json:"status"`
	Created     string `json:"created"`
	Source      string `json:"source"`
	Affected    string `json:"affected"`
}

// NewThreatCard formats a threat for display; missing values render as
// placeholders.
func NewThreatCard(t models.Threat) ThreatCard {
	card := ThreatCard{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Severity:    SeverityBadge(t.Severity),
		Category:    t.Category,
		Status:      StatusBadge(t.MitigationStatus),
		Created:     "Unknown",
		Source:      t.Source,
		Affected:    printer.Sprintf("%d", t.AffectedSystems),
	}
	if !t.CreatedAt.IsZero() {
		card.Created = t.CreatedAt.Format("2006-01-02 15:04")
	}
	if strings.TrimSpace(card.Source) == "" {
		card.Source = "Unknown"
	}
	return card
}

// Indicator colours for actor activity.
const (
	IndicatorRed    = "red"
	IndicatorYellow = "yellow"
	IndicatorGray   = "gray"
)

type ActorCard struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Activity  string `json:"activity"`
	Country   string `json:"country"`
	Indicator string `json:"indicator"`
}

func NewActorCard(a models.ThreatActor) ActorCard {
	card := ActorCard{
		ID:        a.ID,
		Name:      a.Name,
		Activity:  a.ActivityStatus,
		Country:   a.OriginCountry,
		Indicator: IndicatorGray,
	}
	switch a.ActivityStatus {
	case models.ActivityActive:
		card.Indicator = IndicatorRed
	case models.ActivityMonitoring:
		card.Indicator = IndicatorYellow
	}
	if card.Activity == "" {
		card.Activity = "Unknown"
	}
	if card.Country == "" {
		card.Country = "Unknown"
	}
	return card
}

// ActorCards renders the first five actors in the given order.
func ActorCards(actors []models.ThreatActor) []ActorCard {
	if len(actors) > maxActorCards {
		actors = actors[:maxActorCards]
	}
	out := make([]ActorCard, 0, len(actors))
	for _, a := range actors {
		out = append(out, NewActorCard(a))
	}
	return out
}

// Loading flags which sections are still waiting on their fetch; a loading
// section renders as a skeleton.
type Loading struct {
	Metrics bool `json:"metrics"`
	Threats bool `json:"threats"`
	Actors  bool `json:"actors"`
}

// View is the full dashboard page.
type View struct {
	Tiles          []MetricCard `json:"tiles"`
	Threats        []ThreatCard `json:"threats"`
	Actors         []ActorCard  `json:"actors"`
	MitigationRate string       `json:"mitigationRate"`
	Loading        Loading      `json:"loading"`
}

// BuildView assembles the page from fetched snapshots.
func BuildView(threats []models.Threat, metrics []models.SecurityMetric, actors []models.ThreatActor) View {
	cards := make([]ThreatCard, 0, len(threats))
	for _, t := range threats {
		cards = append(cards, NewThreatCard(t))
	}
	return View{
		Tiles:          Summary(threats, metrics),
		Threats:        cards,
		Actors:         ActorCards(actors),
		MitigationRate: MitigationRate(threats),
	}
}
