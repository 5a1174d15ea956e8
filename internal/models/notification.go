package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType sets how an in-app notification is styled.
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// Notification is an in-app message shown in the dashboard bell. Threat
// mutations link the affected threat and the token subject that made them.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	Type      NotificationType `json:"type" gorm:"index"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ThreatID  string           `json:"threat_id,omitempty" gorm:"index"`
	Actor     string           `json:"actor,omitempty"`
	Read      bool             `json:"read" gorm:"index"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Type == "" {
		n.Type = NotificationTypeInfo
	}
	return
}
