package services

import (
	"math"
	"strings"
	"time"

	"github.com/cybershield/intel/internal/models"
)

var severityWeight = map[string]float64{
	models.SeverityLow:      0,
	models.SeverityMedium:   1,
	models.SeverityHigh:     2,
	models.SeverityCritical: 3,
}

// PriorityScore ranks a threat from 0 to 100 by severity, blast radius and
// age. Unknown severities weigh as low; future timestamps count as age 0.
func PriorityScore(t models.Threat, now time.Time) int {
	sev := severityWeight[strings.ToLower(t.Severity)]

	affected := float64(t.AffectedSystems)
	logAffected := 0.0
	if affected > 0 {
		logAffected = math.Log10(affected + 1)
	}

	ageDays := 0.0
	if !t.CreatedAt.IsZero() && now.After(t.CreatedAt) {
		ageDays = math.Floor(now.Sub(t.CreatedAt).Hours() / 24)
	}

	score := 20*sev + (logAffected/6.0)*50 - ageDays*0.05
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

// Prioritize recomputes PriorityScore for every threat in place.
func Prioritize(threats []models.Threat, now time.Time) {
	for i := range threats {
		threats[i].PriorityScore = PriorityScore(threats[i], now)
	}
}
