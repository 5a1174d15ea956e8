package dashboard

import "github.com/cybershield/intel/internal/models"

// All disables a filter.
const All = "All"

// Filter options offered by the feed dashboard.
var (
	SeverityFilters = []string{All, "Critical", "High", "Medium", "Low"}
	CategoryFilters = []string{All, "CVE", "Phishing", "Ransomware", "DDoS", "Data Breach"}
)

// FilterThreats returns the threats whose severity and category equal the
// filters exactly, in their original order.
func FilterThreats(threats []models.FeedThreat, severity, category string) []models.FeedThreat {
	out := make([]models.FeedThreat, 0, len(threats))
	for _, t := range threats {
		if severity != All && t.Severity != severity {
			continue
		}
		if category != All && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Next cycles to the option after current, wrapping around.
func Next(options []string, current string) string {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
