package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/metrics"
	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/util"
)

var (
	ErrThreatNotFound      = errors.New("threat not found")
	ErrThreatTitleRequired = errors.New("threat title is required")
)

// ThreatService is the managed-store surface for the threats table.
type ThreatService struct {
	db       *gorm.DB
	notifier *NotificationService
	now      func() time.Time
}

// NewThreatService builds the service; ns may be nil to skip external notifications.
func NewThreatService(db *gorm.DB, ns *NotificationService) *ThreatService {
	return &ThreatService{db: db, notifier: ns, now: time.Now}
}

// List returns every threat, newest first.
func (s *ThreatService) List(ctx context.Context) ([]models.Threat, error) {
	var threats []models.Threat
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&threats).Error; err != nil {
		return nil, fmt.Errorf("list threats: %w", err)
	}
	return threats, nil
}

// Get retrieves a threat by id.
func (s *ThreatService) Get(ctx context.Context, id string) (*models.Threat, error) {
	var threat models.Threat
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&threat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreatNotFound
		}
		return nil, err
	}
	return &threat, nil
}

// Create inserts a threat. The store assigns id and timestamps; only the
// title is required.
func (s *ThreatService) Create(ctx context.Context, threat *models.Threat) error {
	threat.Title = strings.TrimSpace(threat.Title)
	if threat.Title == "" {
		return ErrThreatTitleRequired
	}

	threat.ID = ""
	threat.CreatedAt = time.Time{}
	threat.UpdatedAt = time.Time{}
	threat.ApplyDefaults()
	threat.PriorityScore = PriorityScore(*threat, s.now())

	if err := s.db.WithContext(ctx).Create(threat).Error; err != nil {
		return fmt.Errorf("create threat: %w", err)
	}

	metrics.IncThreat("create")
	logger.WithFields(map[string]interface{}{
		"threat_id": threat.ID,
		"severity":  util.SanitizeForLog(threat.Severity),
	}).Info("threat created")

	if s.notifier != nil {
		s.notifier.SendExternal(EventThreat, "Threat Added",
			fmt.Sprintf("[%s] %s", strings.ToUpper(threat.Severity), threat.Title))
	}
	return nil
}

// Update merges patch into the stored threat and returns the result.
func (s *ThreatService) Update(ctx context.Context, id string, patch models.ThreatPatch) (*models.Threat, error) {
	threat, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrThreatTitleRequired
	}

	patch.Apply(threat)
	threat.Title = strings.TrimSpace(threat.Title)
	threat.PriorityScore = PriorityScore(*threat, s.now())

	if err := s.db.WithContext(ctx).Save(threat).Error; err != nil {
		return nil, fmt.Errorf("update threat: %w", err)
	}

	metrics.IncThreat("update")
	logger.WithFields(map[string]interface{}{"threat_id": threat.ID}).Info("threat updated")
	return threat, nil
}

// Delete removes a threat by id.
func (s *ThreatService) Delete(ctx context.Context, id string) error {
	var threat models.Threat
	lookup := s.db.WithContext(ctx).Where("id = ?", id).First(&threat)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Threat{})
	if result.Error != nil {
		return fmt.Errorf("delete threat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrThreatNotFound
	}

	metrics.IncThreat("delete")
	logger.WithFields(map[string]interface{}{"threat_id": id}).Info("threat deleted")

	if s.notifier != nil && lookup.Error == nil {
		s.notifier.SendExternal(EventThreat, "Threat Deleted", threat.Title)
	}
	return nil
}

// CVEIDs returns every non-empty cve_id in the store.
func (s *ThreatService) CVEIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Threat{}).
		Where("cve_id <> ''").
		Pluck("cve_id", &ids).Error
	return ids, err
}

// HasCVE reports whether a threat with the given cve_id exists.
func (s *ThreatService) HasCVE(ctx context.Context, cveID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Threat{}).Where("cve_id = ?", cveID).Count(&count).Error
	return count > 0, err
}

// Insert stores pre-normalized threats without notifications, returning
// how many were written.
func (s *ThreatService) Insert(ctx context.Context, threats []models.Threat) (int, error) {
	if len(threats) == 0 {
		return 0, nil
	}
	now := s.now()
	for i := range threats {
		threats[i].ApplyDefaults()
		if threats[i].PriorityScore == 0 {
			threats[i].PriorityScore = PriorityScore(threats[i], now)
		}
	}
	if err := s.db.WithContext(ctx).Create(&threats).Error; err != nil {
		return 0, fmt.Errorf("insert threats: %w", err)
	}
	return len(threats), nil
}
