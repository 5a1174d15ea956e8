package tui

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/cybershield/intel/internal/dashboard"
	"github.com/cybershield/intel/internal/models"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldSeverity
	fieldCategory
	fieldSource
	fieldCVEID
	fieldAffected
	fieldStatus
)

const maxAffected = 1_000_000_000

var formLabels = []string{"Title", "Description", "Severity", "Category", "Source", "CVE ID", "Affected Systems", "Status"}

// FormEditor drives a ThreatForm from termui key IDs, one focused field
// at a time.
type FormEditor struct {
	form  *dashboard.ThreatForm
	focus int
}

func NewFormEditor(form *dashboard.ThreatForm) *FormEditor {
	return &FormEditor{form: form}
}

func (e *FormEditor) Form() *dashboard.ThreatForm { return e.form }

func (e *FormEditor) Focus() int { return e.focus }

// Key applies one key and reports whether it asked to save the form.
// Tab and arrows move focus, Space and Left/Right cycle choice fields,
// printable keys type into text fields.
func (e *FormEditor) Key(id string) (submit bool) {
	switch id {
	case "<Enter>":
		return true
	case "<Tab>", "<Down>":
		e.focus = (e.focus + 1) % len(formLabels)
		return false
	case "<Up>":
		e.focus = (e.focus + len(formLabels) - 1) % len(formLabels)
		return false
	}

	f := e.form.Fields()
	switch e.focus {
	case fieldTitle:
		f.Title = editText(f.Title, id)
	case fieldDescription:
		f.Description = editText(f.Description, id)
	case fieldSource:
		f.Source = editText(f.Source, id)
	case fieldCVEID:
		f.CVEID = editText(f.CVEID, id)
	case fieldSeverity:
		f.Severity = cycle(models.Severities, f.Severity, id)
	case fieldCategory:
		f.Category = cycle(models.Categories, f.Category, id)
	case fieldStatus:
		f.MitigationStatus = cycle(models.MitigationStatuses, f.MitigationStatus, id)
	case fieldAffected:
		f.AffectedSystems = editCount(f.AffectedSystems, id)
	}
	e.form.SetFields(f)
	return false
}

// Lines renders the dialog, marking the focused field.
func (e *FormEditor) Lines() []string {
	f := e.form.Fields()
	values := []string{
		f.Title, f.Description, f.Severity, f.Category,
		f.Source, f.CVEID, strconv.Itoa(f.AffectedSystems), f.MitigationStatus,
	}
	lines := make([]string, 0, len(values)+2)
	for i, label := range formLabels {
		marker := "  "
		if i == e.focus {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%-17s %s", marker, label+":", values[i]))
	}
	lines = append(lines, "", "Tab next field, Space cycle, Enter save, Esc cancel")
	return lines
}

func printable(id string) (rune, bool) {
	if id == "<Space>" {
		return ' ', true
	}
	if utf8.RuneCountInString(id) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(id)
	return r, r != utf8.RuneError
}

func editText(s, id string) string {
	if id == "<Backspace>" {
		if s == "" {
			return s
		}
		_, size := utf8.DecodeLastRuneInString(s)
		return s[:len(s)-size]
	}
	if r, ok := printable(id); ok {
		return s + string(r)
	}
	return s
}

func editCount(n int, id string) int {
	if id == "<Backspace>" {
		return n / 10
	}
	if len(id) == 1 && id[0] >= '0' && id[0] <= '9' && n < maxAffected/10 {
		return n*10 + int(id[0]-'0')
	}
	return n
}

func cycle(options []string, current, id string) string {
	step := 0
	switch id {
	case "<Space>", "<Right>":
		step = 1
	case "<Left>":
		step = len(options) - 1
	default:
		return current
	}
	for i, o := range options {
		if o == current {
			return options[(i+step)%len(options)]
		}
	}
	return options[0]
}
