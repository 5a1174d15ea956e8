// Package dashboard holds the view models behind the threat dashboards:
// data-access hooks over a Store, summary tiles, badges, the threat form,
// and the REST-backed feed dashboard with its sample fallback.
package dashboard

import (
	"strings"

	"github.com/cybershield/intel/internal/models"
)

// Variant is the visual style of a badge.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantSecondary   Variant = "secondary"
	VariantDestructive Variant = "destructive"
	VariantOutline     Variant = "outline"
)

const unknownLabel = "UNKNOWN"

type Badge struct {
	Label   string  `json:"label"`
	Variant Variant `json:"variant"`
}

// SeverityBadge renders a severity. Values outside the known set render as
// UNKNOWN with the outline variant.
func SeverityBadge(severity string) Badge {
	switch strings.ToLower(severity) {
	case models.SeverityCritical:
		return Badge{Label: strings.ToUpper(severity), Variant: VariantDestructive}
	case models.SeverityHigh:
		return Badge{Label: strings.ToUpper(severity), Variant: VariantSecondary}
	case models.SeverityMedium:
		return Badge{Label: strings.ToUpper(severity), Variant: VariantDefault}
	case models.SeverityLow:
		return Badge{Label: strings.ToUpper(severity), Variant: VariantOutline}
	}
	return Badge{Label: unknownLabel, Variant: VariantOutline}
}

// StatusBadge renders a mitigation status, e.g. "in_progress" as
// "IN PROGRESS".
func StatusBadge(status string) Badge {
	if status == "" {
		return Badge{Label: unknownLabel, Variant: VariantOutline}
	}
	label := strings.ToUpper(strings.Replace(status, "_", " ", 1))
	switch status {
	case models.StatusMitigated:
		return Badge{Label: label, Variant: VariantDefault}
	case models.StatusInProgress:
		return Badge{Label: label, Variant: VariantSecondary}
	case models.StatusUnmitigated:
		return Badge{Label: label, Variant: VariantDestructive}
	}
	return Badge{Label: label, Variant: VariantOutline}
}
