package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationProvider is an external channel reached through a shoutrrr URL
// (discord://, slack://, telegram://, generic+https://, ...).
type NotificationProvider struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`

	NotifyThreats bool `json:"notify_threats"`
	NotifyIngest  bool `json:"notify_ingest"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *NotificationProvider) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}

// All lists every model for automatic migration.
func All() []interface{} {
	return []interface{}{
		&Threat{},
		&ThreatActor{},
		&SecurityMetric{},
		&IntelFeed{},
		&Subscriber{},
		&Notification{},
		&NotificationProvider{},
	}
}
