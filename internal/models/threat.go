package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

const (
	CategoryMalware       = "malware"
	CategoryPhishing      = "phishing"
	CategoryVulnerability = "vulnerability"
	CategoryDataBreach    = "data_breach"
	CategoryDDoS          = "ddos"
	CategoryInsiderThreat = "insider_threat"
	CategoryRansomware    = "ransomware"
	CategoryAPT           = "apt"
)

const (
	StatusUnmitigated   = "unmitigated"
	StatusInProgress    = "in_progress"
	StatusMitigated     = "mitigated"
	StatusFalsePositive = "false_positive"
)

// Severities lists the severities in descending order of urgency.
var Severities = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Categories lists the selectable threat categories.
var Categories = []string{
	CategoryMalware, CategoryPhishing, CategoryVulnerability, CategoryDataBreach,
	CategoryDDoS, CategoryInsiderThreat, CategoryRansomware, CategoryAPT,
}

// MitigationStatuses lists the selectable mitigation states.
var MitigationStatuses = []string{StatusUnmitigated, StatusInProgress, StatusMitigated, StatusFalsePositive}

// Threat is a tracked security issue. Enumerated fields are stored as given;
// values outside the known sets are kept and rendered as unknown.
type Threat struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	Title            string    `json:"title" gorm:"not null"`
	Description      string    `json:"description" gorm:"type:text"`
	Severity         string    `json:"severity" gorm:"index"`
	Category         string    `json:"category" gorm:"index"`
	Source           string    `json:"source"`
	CVEID            string    `json:"cve_id" gorm:"column:cve_id;index"`
	AffectedSystems  int       `json:"affected_systems"`
	MitigationStatus string    `json:"mitigation_status" gorm:"index"`
	PriorityScore    int       `json:"priority_score"`
	ThreatActor      string    `json:"threat_actor"`
	Mitigation       string    `json:"mitigation" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (t *Threat) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

// ApplyDefaults fills the form defaults for fields left empty.
func (t *Threat) ApplyDefaults() {
	if t.Severity == "" {
		t.Severity = SeverityMedium
	}
	if t.Category == "" {
		t.Category = CategoryVulnerability
	}
	if t.MitigationStatus == "" {
		t.MitigationStatus = StatusUnmitigated
	}
}

// ThreatPatch is a partial update; nil fields are left untouched.
type ThreatPatch struct {
	Title            *string `json:"title,omitempty"`
	Description      *string `json:"description,omitempty"`
	Severity         *string `json:"severity,omitempty"`
	Category         *string `json:"category,omitempty"`
	Source           *string `json:"source,omitempty"`
	CVEID            *string `json:"cve_id,omitempty"`
	AffectedSystems  *int    `json:"affected_systems,omitempty"`
	MitigationStatus *string `json:"mitigation_status,omitempty"`
	ThreatActor      *string `json:"threat_actor,omitempty"`
	Mitigation       *string `json:"mitigation,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ThreatPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Severity == nil && p.Category == nil &&
		p.Source == nil && p.CVEID == nil && p.AffectedSystems == nil && p.MitigationStatus == nil &&
		p.ThreatActor == nil && p.Mitigation == nil
}

// Apply copies the set fields of p onto t.
func (p ThreatPatch) Apply(t *Threat) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Severity != nil {
		t.Severity = *p.Severity
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Source != nil {
		t.Source = *p.Source
	}
	if p.CVEID != nil {
		t.CVEID = *p.CVEID
	}
	if p.AffectedSystems != nil {
		t.AffectedSystems = *p.AffectedSystems
	}
	if p.MitigationStatus != nil {
		t.MitigationStatus = *p.MitigationStatus
	}
	if p.ThreatActor != nil {
		t.ThreatActor = *p.ThreatActor
	}
	if p.Mitigation != nil {
		t.Mitigation = *p.Mitigation
	}
}

// PatchFrom builds a patch that sets every editable field of t.
func PatchFrom(t Threat) ThreatPatch {
	return ThreatPatch{
		Title:            &t.Title,
		Description:      &t.Description,
		Severity:         &t.Severity,
		Category:         &t.Category,
		Source:           &t.Source,
		CVEID:            &t.CVEID,
		AffectedSystems:  &t.AffectedSystems,
		MitigationStatus: &t.MitigationStatus,
		ThreatActor:      &t.ThreatActor,
		Mitigation:       &t.Mitigation,
	}
}
