package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title        string         `gorm:"type:varchar(255);not null"`
	StoragePath  string         `gorm:"type:text"`
	MimeType     string         `gorm:"type:varchar(100)"`
	PageCount    int            `gorm:"not null;default:1"`
	PageWidth    float64        `gorm:"default:0"`
	PageHeight   float64        `gorm:"default:0"`
	Status       string         `gorm:"type:varchar(20);not null;default:'queued'"`
	Progress     int            `gorm:"not null;default:0"`
	StatusDetail string         `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
