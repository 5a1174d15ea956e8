package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybershield/intel/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestSeverityForCVSS(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{10, models.SeverityCritical},
		{9.0, models.SeverityCritical},
		{8.9, models.SeverityHigh},
		{7.0, models.SeverityHigh},
		{6.9, models.SeverityMedium},
		{4.0, models.SeverityMedium},
		{3.9, models.SeverityLow},
		{0, models.SeverityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityForCVSS(tt.score), "score %.1f", tt.score)
	}
}

func TestNormalize(t *testing.T) {
	threat := Normalize(CIRCLItem{ID: "CVE-2024-3400", Summary: "PAN-OS command injection", CVSS: floatPtr(10)})

	assert.Equal(t, "CVE-2024-3400", threat.Title)
	assert.Equal(t, "CVE-2024-3400", threat.CVEID)
	assert.Equal(t, "PAN-OS command injection", threat.Description)
	assert.Equal(t, models.SeverityCritical, threat.Severity)
	assert.Equal(t, models.CategoryVulnerability, threat.Category)
	assert.Equal(t, models.StatusUnmitigated, threat.MitigationStatus)
	assert.Equal(t, 100, threat.PriorityScore)
	assert.Equal(t, 1000, threat.AffectedSystems)
	assert.Equal(t, SourceCIRCL, threat.Source)
}

func TestNormalizeNullCVSS(t *testing.T) {
	threat := Normalize(CIRCLItem{ID: "CVE-2024-0001"})
	assert.Equal(t, models.SeverityLow, threat.Severity)
	assert.Equal(t, 0, threat.PriorityScore)
}

func TestCIRCLClientLast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "CyberShield-Intel/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "CVE-2024-0001", "summary": "first", "cvss": 9.8},
			{"id": "CVE-2024-0002", "summary": "second", "cvss": null},
			{"id": "", "summary": "no id"},
			{"id": "CVE-2024-0003", "summary": "third", "cvss": 7.5}
		]`))
	}))
	defer srv.Close()

	client := NewCIRCLClient(srv.URL)
	threats, err := client.Last(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, threats, 2, "limit applies before items without an id are dropped")
	assert.Equal(t, "CVE-2024-0001", threats[0].CVEID)
	assert.Equal(t, models.SeverityCritical, threats[0].Severity)
	assert.Equal(t, models.SeverityLow, threats[1].Severity)
}

func TestCIRCLClientNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewCIRCLClient(srv.URL).Last(context.Background(), 10)
	assert.Error(t, err)
}

func TestCIRCLClientBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := NewCIRCLClient(srv.URL).Last(context.Background(), 10)
	assert.Error(t, err)
}

func TestNewCIRCLClientDefaultURL(t *testing.T) {
	assert.Equal(t, DefaultCIRCLURL, NewCIRCLClient("").URL())
}
