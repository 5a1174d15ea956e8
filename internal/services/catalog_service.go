package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cybershield/intel/internal/models"
)

// ThreatActorService exposes the read-only threat_actors table.
type ThreatActorService struct {
	db *gorm.DB
}

func NewThreatActorService(db *gorm.DB) *ThreatActorService {
	return &ThreatActorService{db: db}
}

// List returns actors by most recent activity; actors with no recorded
// activity sort last.
func (s *ThreatActorService) List(ctx context.Context) ([]models.ThreatActor, error) {
	var actors []models.ThreatActor
	err := s.db.WithContext(ctx).
		Order("last_activity IS NULL, last_activity desc").
		Find(&actors).Error
	if err != nil {
		return nil, fmt.Errorf("list threat actors: %w", err)
	}
	return actors, nil
}

// MetricService exposes the read-only security_metrics table.
type MetricService struct {
	db *gorm.DB
}

func NewMetricService(db *gorm.DB) *MetricService {
	return &MetricService{db: db}
}

// List returns metrics, most recently recorded first.
func (s *MetricService) List(ctx context.Context) ([]models.SecurityMetric, error) {
	var metrics []models.SecurityMetric
	err := s.db.WithContext(ctx).
		Order("recorded_at IS NULL, recorded_at desc").
		Find(&metrics).Error
	if err != nil {
		return nil, fmt.Errorf("list security metrics: %w", err)
	}
	return metrics, nil
}

// LookupMetric returns the first metric whose name contains name,
// case-insensitively.
func LookupMetric(metrics []models.SecurityMetric, name string) (models.SecurityMetric, bool) {
	needle := strings.ToLower(name)
	for _, m := range metrics {
		if strings.Contains(strings.ToLower(m.MetricName), needle) {
			return m, true
		}
	}
	return models.SecurityMetric{}, false
}
