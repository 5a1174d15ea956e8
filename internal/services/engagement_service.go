package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/cybershield/intel/internal/models"
)

var ErrInvalidEmail = errors.New("invalid email address")

// SubscriptionService keeps the alert mailing list.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe adds email to the list. It reports created=false when the
// address was already subscribed.
func (s *SubscriptionService) Subscribe(ctx context.Context, email string) (created bool, err error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return false, ErrInvalidEmail
	}
	normalized := strings.ToLower(addr.Address)

	var existing models.Subscriber
	err = s.db.WithContext(ctx).Where("email = ?", normalized).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup subscriber: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(&models.Subscriber{Email: normalized}).Error; err != nil {
		return false, fmt.Errorf("create subscriber: %w", err)
	}
	return true, nil
}

// Assessment is the grading result for a training submission.
type Assessment struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// GradeAnalysis scores a free-text threat analysis: referencing a CVE id
// passes.
func GradeAnalysis(analysis string) Assessment {
	if strings.Contains(strings.ToUpper(analysis), "CVE-") {
		return Assessment{
			Score:    80,
			Feedback: "Good: you identified the CVE. Expand on mitigations for a higher score.",
		}
	}
	return Assessment{
		Score:    40,
		Feedback: "Try to reference specific CVEs or indicators of compromise.",
	}
}
