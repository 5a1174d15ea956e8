package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/util"
)

var categoryLabels = map[string]string{
	models.CategoryMalware:       "Malware",
	models.CategoryPhishing:      "Phishing",
	models.CategoryVulnerability: "Vulnerability",
	models.CategoryDataBreach:    "Data Breach",
	models.CategoryDDoS:          "DDoS",
	models.CategoryInsiderThreat: "Insider Threat",
	models.CategoryRansomware:    "Ransomware",
	models.CategoryAPT:           "APT",
}

var statusLabels = map[string]string{
	models.StatusUnmitigated:   "New",
	models.StatusInProgress:    "Active",
	models.StatusMitigated:     "Mitigated",
	models.StatusFalsePositive: "False Positive",
}

// IntelService serves the aggregate intelligence API on top of the threats
// table.
type IntelService struct {
	threats *ThreatService
	now     func() time.Time
}

func NewIntelService(threats *ThreatService) *IntelService {
	return &IntelService{threats: threats, now: time.Now}
}

// FeedThreats returns every threat as a priority-scored feed entry.
func (s *IntelService) FeedThreats(ctx context.Context) ([]models.FeedThreat, error) {
	threats, err := s.threats.List(ctx)
	if err != nil {
		return nil, err
	}
	Prioritize(threats, s.now())

	out := make([]models.FeedThreat, 0, len(threats))
	for _, t := range threats {
		out = append(out, ToFeedThreat(t))
	}
	return out, nil
}

// Stats computes the headline aggregates.
func (s *IntelService) Stats(ctx context.Context) (models.Stats, error) {
	threats, err := s.threats.List(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	return ComputeStats(threats), nil
}

// ComputeStats counts critical and in-progress threats and averages the
// time to mitigation.
func ComputeStats(threats []models.Threat) models.Stats {
	stats := models.Stats{TotalThreats: len(threats)}

	var mitigated int
	var total time.Duration
	for _, t := range threats {
		if strings.EqualFold(t.Severity, models.SeverityCritical) {
			stats.CriticalThreats++
		}
		switch t.MitigationStatus {
		case models.StatusInProgress:
			stats.ActiveIncidents++
		case models.StatusMitigated:
			if t.UpdatedAt.After(t.CreatedAt) {
				total += t.UpdatedAt.Sub(t.CreatedAt)
			}
			mitigated++
		}
	}

	avg := 0.0
	if mitigated > 0 {
		avg = total.Hours() / float64(mitigated)
	}
	stats.AvgResponseTime = fmt.Sprintf("%.1fh", avg)
	return stats
}

// ToFeedThreat projects a stored threat onto the feed shape.
func ToFeedThreat(t models.Threat) models.FeedThreat {
	date := ""
	if !t.CreatedAt.IsZero() {
		date = t.CreatedAt.Format("2006-01-02")
	}
	actor := t.ThreatActor
	if actor == "" {
		actor = "Unknown"
	}
	return models.FeedThreat{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Severity:        titleCase(t.Severity),
		PriorityScore:   t.PriorityScore,
		Category:        CategoryLabel(t),
		Date:            date,
		Status:          labelOr(statusLabels, t.MitigationStatus),
		AffectedSystems: t.AffectedSystems,
		ThreatActor:     actor,
		Mitigation:      t.Mitigation,
	}
}

// CategoryLabel returns the display label; vulnerabilities with a CVE id
// are labelled "CVE".
func CategoryLabel(t models.Threat) string {
	if t.Category == models.CategoryVulnerability && t.CVEID != "" {
		return "CVE"
	}
	return labelOr(categoryLabels, t.Category)
}

func labelOr(labels map[string]string, key string) string {
	if label, ok := labels[key]; ok {
		return label
	}
	if key == "" {
		return "Unknown"
	}
	return key
}

func titleCase(s string) string {
	if s == "" {
		return "Unknown"
	}
	return util.UpperFirst(strings.ToLower(s))
}
