package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SecurityMetric struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	MetricName  string     `json:"metric_name" gorm:"not null"`
	MetricValue float64    `json:"metric_value"`
	Unit        string     `json:"unit"`
	RecordedAt  *time.Time `json:"recorded_at" gorm:"index"`
	CreatedBy   string     `json:"created_by"`
}

func (m *SecurityMetric) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
