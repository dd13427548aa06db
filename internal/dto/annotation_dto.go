package dto

import (
	"time"

	"github.com/google/uuid"
)

type PositionDTO struct {
	X      float64 `json:"x" validate:"gte=0"`
	Y      float64 `json:"y" validate:"gte=0"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

type CreateAnnotationRequest struct {
	// Id may be chosen by the client so an optimistic copy keeps its identity.
	Id           *uuid.UUID             `json:"id"`
	DocumentId   uuid.UUID              `json:"document_id" validate:"required"`
	PageNumber   int                    `json:"page_number" validate:"required,min=1"`
	Type         string                 `json:"type" validate:"required,oneof=highlight note drawing text stamp"`
	Color        string                 `json:"color" validate:"required,oneof=yellow green blue pink orange red purple"`
	Position     PositionDTO            `json:"position"`
	Content      *string                `json:"content" validate:"omitempty,max=10000"`
	SelectedText *string                `json:"selected_text" validate:"omitempty,max=10000"`
	Properties   map[string]interface{} `json:"properties"`
}

// UpdateAnnotationRequest only touches the fields that are present.
type UpdateAnnotationRequest struct {
	Id         uuid.UUID              `json:"annotation_id"`
	PageNumber *int                   `json:"page_number" validate:"omitempty,min=1"`
	Color      *string                `json:"color" validate:"omitempty,oneof=yellow green blue pink orange red purple"`
	Position   *PositionDTO           `json:"position"`
	Content    *string                `json:"content" validate:"omitempty,max=10000"`
	Properties map[string]interface{} `json:"properties"`
}

type AnnotationResponse struct {
	Id           uuid.UUID              `json:"id"`
	DocumentId   uuid.UUID              `json:"document_id"`
	UserId       uuid.UUID              `json:"user_id"`
	PageNumber   int                    `json:"page_number"`
	Type         string                 `json:"type"`
	Color        string                 `json:"color"`
	Position     PositionDTO            `json:"position"`
	Content      *string                `json:"content"`
	SelectedText *string                `json:"selected_text"`
	Properties   map[string]interface{} `json:"properties"`
	Permission   string                 `json:"permission"` // "owner" or the share level
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    *time.Time             `json:"updated_at"`
}

type ListAnnotationsRequest struct {
	DocumentId uuid.UUID
	PageNumber *int
	Type       string `validate:"omitempty,oneof=highlight note drawing text stamp"`
	Color      string `validate:"omitempty,oneof=yellow green blue pink orange red purple"`
	Mine       bool
}

type CreateCommentRequest struct {
	AnnotationId uuid.UUID
	ParentId     *uuid.UUID `json:"parent_id"`
	Content      string     `json:"content" validate:"required,max=5000"`
}

type CommentResponse struct {
	Id           uuid.UUID          `json:"id"`
	AnnotationId uuid.UUID          `json:"annotation_id"`
	UserId       uuid.UUID          `json:"user_id"`
	ParentId     *uuid.UUID         `json:"parent_id"`
	Content      string             `json:"content"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    *time.Time         `json:"updated_at"`
	Replies      []*CommentResponse `json:"replies,omitempty"`
}

type ShareAnnotationRequest struct {
	AnnotationId uuid.UUID
	UserId       uuid.UUID `json:"user_id" validate:"required"`
	Permission   string    `json:"permission" validate:"required,oneof=view comment edit"`
}

type ShareResponse struct {
	Id           uuid.UUID `json:"id"`
	AnnotationId uuid.UUID `json:"annotation_id"`
	UserId       uuid.UUID `json:"user_id"`
	Permission   string    `json:"permission"`
	GrantedBy    uuid.UUID `json:"granted_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type SearchAnnotationsResponse struct {
	Annotation     AnnotationResponse `json:"annotation"`
	RelevanceScore float64            `json:"relevance_score"`
}

// EmbedAnnotationMessage is queued whenever an annotation's text changes.
type EmbedAnnotationMessage struct {
	AnnotationId uuid.UUID `json:"annotation_id"`
}
