package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusQueued     DocumentStatus = "queued"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Terminal statuses accept no further progress reports.
func (s DocumentStatus) Terminal() bool {
	return s == DocumentStatusCompleted || s == DocumentStatusFailed
}

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusQueued, DocumentStatusProcessing, DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}

type Document struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Title        string
	StoragePath  string
	MimeType     string
	PageCount    int
	PageWidth    float64
	PageHeight   float64
	Status       DocumentStatus
	Progress     int
	StatusDetail string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
