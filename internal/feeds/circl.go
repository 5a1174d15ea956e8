package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/version"
)

const (
	DefaultCIRCLURL = "https://cve.circl.lu/api/last"

	SourceCIRCL       = "CIRCL"
	defaultAffected   = 1000
	defaultActor      = "Unknown"
	defaultMitigation = "Refer to vendor advisory / apply patch"
)

// CIRCLItem is one entry of the cve.circl.lu "last" feed. CVSS is nil when
// the upstream has not scored the entry yet.
type CIRCLItem struct {
	ID        string   `json:"id"`
	Summary   string   `json:"summary"`
	CVSS      *float64 `json:"cvss"`
	Published string   `json:"Published"`
	Modified  string   `json:"Modified"`
}

// CIRCLClient fetches recent CVEs from cve.circl.lu.
type CIRCLClient struct {
	url        string
	httpClient *http.Client
}

func NewCIRCLClient(url string) *CIRCLClient {
	if url == "" {
		url = DefaultCIRCLURL
	}
	return &CIRCLClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// URL returns the endpoint the client polls.
func (c *CIRCLClient) URL() string {
	return c.url
}

// Last returns up to limit normalized threats from the feed.
func (c *CIRCLClient) Last(ctx context.Context, limit int) ([]models.Threat, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build circl request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch circl feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("circl feed returned status %d", resp.StatusCode)
	}

	var items []CIRCLItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode circl feed: %w", err)
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	threats := make([]models.Threat, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		threats = append(threats, Normalize(item))
	}
	return threats, nil
}

// SeverityForCVSS buckets a CVSS base score.
func SeverityForCVSS(score float64) string {
	switch {
	case score >= 9.0:
		return models.SeverityCritical
	case score >= 7.0:
		return models.SeverityHigh
	case score >= 4.0:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Normalize maps a feed item onto a threat record.
func Normalize(item CIRCLItem) models.Threat {
	score := 0.0
	if item.CVSS != nil {
		score = *item.CVSS
	}
	return models.Threat{
		Title:            item.ID,
		Description:      item.Summary,
		Severity:         SeverityForCVSS(score),
		Category:         models.CategoryVulnerability,
		Source:           SourceCIRCL,
		CVEID:            item.ID,
		AffectedSystems:  defaultAffected,
		MitigationStatus: models.StatusUnmitigated,
		PriorityScore:    int(math.Min(100, math.Max(0, score*10))),
		ThreatActor:      defaultActor,
		Mitigation:       defaultMitigation,
	}
}
