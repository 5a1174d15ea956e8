package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/util"
)

const (
	EventThreat = "threat"
	EventIngest = "ingest"
	EventTest   = "test"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrProviderNotFound     = errors.New("notification provider not found")
	ErrInvalidProvider      = errors.New("provider name and url are required")
)

// SendFunc delivers msg to a shoutrrr service URL.
type SendFunc func(url, msg string) error

type NotificationService struct {
	DB   *gorm.DB
	send SendFunc
	wg   sync.WaitGroup
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		DB: db,
		send: func(url, msg string) error {
			return shoutrrr.Send(url, msg)
		},
	}
}

// SetSender replaces the shoutrrr transport, used in tests.
func (s *NotificationService) SetSender(fn SendFunc) {
	s.send = fn
}

// Internal Notifications (DB)

func (s *NotificationService) Create(nType models.NotificationType, title, message string) (*models.Notification, error) {
	notification := &models.Notification{
		Type:    nType,
		Title:   title,
		Message: message,
	}
	return notification, s.Record(notification)
}

// Record stores a prepared notification, e.g. one linked to a threat.
func (s *NotificationService) Record(n *models.Notification) error {
	n.Read = false
	return s.DB.Create(n).Error
}

func (s *NotificationService) List(unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.DB.Order("created_at desc")
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	result := query.Find(&notifications)
	return notifications, result.Error
}

func (s *NotificationService) MarkAsRead(id string) error {
	result := s.DB.Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead() error {
	return s.DB.Model(&models.Notification{}).Where("read = ?", false).Update("read", true).Error
}

// Providers

func (s *NotificationService) ListProviders() ([]models.NotificationProvider, error) {
	var providers []models.NotificationProvider
	err := s.DB.Order("name asc").Find(&providers).Error
	return providers, err
}

func (s *NotificationService) CreateProvider(p *models.NotificationProvider) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.URL) == "" {
		return ErrInvalidProvider
	}
	return s.DB.Create(p).Error
}

func (s *NotificationService) DeleteProvider(id string) error {
	result := s.DB.Where("id = ?", id).Delete(&models.NotificationProvider{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProviderNotFound
	}
	return nil
}

// External Notifications (Shoutrrr)

// SendExternal fans title/message out to every enabled provider subscribed
// to eventType. Delivery runs in the background; failures are logged.
func (s *NotificationService) SendExternal(eventType, title, message string) {
	var providers []models.NotificationProvider
	if err := s.DB.Where("enabled = ?", true).Find(&providers).Error; err != nil {
		logger.Log().WithError(err).Error("Failed to fetch notification providers")
		return
	}

	msg := fmt.Sprintf("%s\n\n%s", title, message)
	for _, provider := range providers {
		if !wants(provider, eventType) {
			continue
		}

		s.wg.Add(1)
		go func(p models.NotificationProvider) {
			defer s.wg.Done()
			if err := s.send(p.URL, msg); err != nil {
				logger.Log().WithError(err).
					WithField("provider", util.SanitizeForLog(p.Name)).
					Warn("Failed to send notification")
			}
		}(provider)
	}
}

// Wait blocks until in-flight external deliveries finish.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

// TestProvider sends a test message synchronously.
func (s *NotificationService) TestProvider(p models.NotificationProvider) error {
	return s.send(p.URL, "CyberShield test notification")
}

func wants(p models.NotificationProvider, eventType string) bool {
	switch eventType {
	case EventThreat:
		return p.NotifyThreats
	case EventIngest:
		return p.NotifyIngest
	default:
		return true
	}
}
