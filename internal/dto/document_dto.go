package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	StoragePath string  `json:"storage_path" validate:"required"`
	MimeType    string  `json:"mime_type" validate:"required"`
	PageCount   int     `json:"page_count" validate:"min=0"`
	PageWidth   float64 `json:"page_width" validate:"gte=0"`
	PageHeight  float64 `json:"page_height" validate:"gte=0"`
}

type DocumentResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	StoragePath  string     `json:"storage_path"`
	MimeType     string     `json:"mime_type"`
	PageCount    int        `json:"page_count"`
	PageWidth    float64    `json:"page_width"`
	PageHeight   float64    `json:"page_height"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	StatusDetail string     `json:"status_detail,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type DocumentStatusResponse struct {
	Id           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	Progress     int       `json:"progress"`
	StatusDetail string    `json:"status_detail,omitempty"`
}

// UpdateDocumentStatusRequest is sent by the processing worker.
type UpdateDocumentStatusRequest struct {
	Id        uuid.UUID
	Status    string `json:"status" validate:"required,oneof=queued processing completed failed"`
	Progress  int    `json:"progress" validate:"min=0,max=100"`
	Detail    string `json:"detail" validate:"max=1000"`
	PageCount *int   `json:"page_count" validate:"omitempty,min=0"`
}
