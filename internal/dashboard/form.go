package dashboard

import (
	"context"
	"sync"

	"github.com/cybershield/intel/internal/models"
)

// FormFields is the editable field set of the threat form.
type FormFields struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Severity         string `json:"severity"`
	Category         string `json:"category"`
	Source           string `json:"source"`
	CVEID            string `json:"cve_id"`
	AffectedSystems  int    `json:"affected_systems"`
	MitigationStatus string `json:"mitigation_status"`
}

// DefaultFormFields is the blank create form.
func DefaultFormFields() FormFields {
	return FormFields{
		Severity:         models.SeverityMedium,
		Category:         models.CategoryVulnerability,
		MitigationStatus: models.StatusUnmitigated,
	}
}

func fieldsFrom(t models.Threat) FormFields {
	f := FormFields{
		Title:            t.Title,
		Description:      t.Description,
		Severity:         t.Severity,
		Category:         t.Category,
		Source:           t.Source,
		CVEID:            t.CVEID,
		AffectedSystems:  t.AffectedSystems,
		MitigationStatus: t.MitigationStatus,
	}
	def := DefaultFormFields()
	if f.Severity == "" {
		f.Severity = def.Severity
	}
	if f.Category == "" {
		f.Category = def.Category
	}
	if f.MitigationStatus == "" {
		f.MitigationStatus = def.MitigationStatus
	}
	return f
}

func (f FormFields) threat() models.Threat {
	return models.Threat{
		Title:            f.Title,
		Description:      f.Description,
		Severity:         f.Severity,
		Category:         f.Category,
		Source:           f.Source,
		CVEID:            f.CVEID,
		AffectedSystems:  f.AffectedSystems,
		MitigationStatus: f.MitigationStatus,
	}
}

func (f FormFields) patch() models.ThreatPatch {
	return models.ThreatPatch{
		Title:            &f.Title,
		Description:      &f.Description,
		Severity:         &f.Severity,
		Category:         &f.Category,
		Source:           &f.Source,
		CVEID:            &f.CVEID,
		AffectedSystems:  &f.AffectedSystems,
		MitigationStatus: &f.MitigationStatus,
	}
}

// Option lists for the select inputs.
var (
	SeverityOptions = models.Severities
	CategoryOptions = models.Categories
	StatusOptions   = models.MitigationStatuses
)

// ThreatForm is the create/edit dialog. With an existing threat it edits
// that record; otherwise it creates.
type ThreatForm struct {
	mu         sync.Mutex
	existing   *models.Threat
	fields     FormFields
	open       bool
	submitting bool
}

func NewThreatForm(existing *models.Threat) *ThreatForm {
	f := &ThreatForm{fields: DefaultFormFields()}
	if existing != nil {
		cp := *existing
		f.existing = &cp
		f.fields = fieldsFrom(cp)
	}
	return f
}

// Title is the dialog heading.
func (f *ThreatForm) Title() string {
	if f.existing != nil {
		return "Edit Threat"
	}
	return "Add New Threat"
}

func (f *ThreatForm) Open() {
	f.mu.Lock()
	f.open = true
	f.mu.Unlock()
}

func (f *ThreatForm) Close() {
	f.mu.Lock()
	f.open = false
	f.mu.Unlock()
}

func (f *ThreatForm) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *ThreatForm) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *ThreatForm) Fields() FormFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *ThreatForm) SetFields(fields FormFields) {
	f.mu.Lock()
	f.fields = fields
	f.mu.Unlock()
}

// Submit saves the form through hook. On success the dialog closes and a
// create form resets to defaults; on failure it stays open with the
// entered values and the error is returned.
func (f *ThreatForm) Submit(ctx context.Context, hook *ThreatHook) (*models.Threat, error) {
	f.mu.Lock()
	fields := f.fields
	f.submitting = true
	f.mu.Unlock()

	var (
		saved *models.Threat
		err   error
	)
	if f.existing != nil {
		saved, err = hook.Update(ctx, f.existing.ID, fields.patch())
	} else {
		saved, err = hook.Add(ctx, fields.threat())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		return nil, err
	}
	f.open = false
	if f.existing == nil {
		f.fields = DefaultFormFields()
	}
	return saved, nil
}
