package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IntelFeed is an upstream source polled by the ingest scheduler.
// FeedName selects the ingest adapter (e.g. "circl").
type IntelFeed struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	FeedName    string     `json:"feed_name" gorm:"uniqueIndex"`
	FeedURL     string     `json:"feed_url"`
	IsActive    bool       `json:"is_active"`
	LastUpdated *time.Time `json:"last_updated"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (f *IntelFeed) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return
}

type Subscriber struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}
