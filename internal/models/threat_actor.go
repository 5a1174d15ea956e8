package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityActive     = "active"
	ActivityMonitoring = "monitoring"
	ActivityDormant    = "dormant"
)

// ThreatActor is a tracked adversary. Time fields are nil when unknown.
type ThreatActor struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	Name           string     `json:"name" gorm:"not null"`
	Aliases        string     `json:"aliases"`
	OriginCountry  string     `json:"origin_country"`
	ActivityStatus string     `json:"activity_status"`
	FirstSeen      *time.Time `json:"first_seen"`
	LastActivity   *time.Time `json:"last_activity" gorm:"index"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (a *ThreatActor) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
