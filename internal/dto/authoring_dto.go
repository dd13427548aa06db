package dto

import (
	"legal-annotation-be/pkg/authoring"
	"legal-annotation-be/pkg/geometry"

	"github.com/google/uuid"
)

type CreateAuthoringSessionRequest struct {
	DocumentId uuid.UUID         `json:"document_id" validate:"required"`
	PageNumber int               `json:"page_number" validate:"required,min=1"`
	Viewport   geometry.Viewport `json:"viewport"`
}

type SelectToolRequest struct {
	Type        string  `json:"type" validate:"required,oneof=highlight note drawing text stamp"`
	Color       string  `json:"color" validate:"required,oneof=yellow green blue pink orange red purple"`
	StrokeWidth float64 `json:"stroke_width" validate:"gte=0,lte=64"`
	StampKind   string  `json:"stamp_kind"`
	FontSize    float64 `json:"font_size" validate:"gte=0,lte=200"`
}

type UpdateViewportRequest struct {
	PageNumber *int              `json:"page_number" validate:"omitempty,min=1"`
	Viewport   geometry.Viewport `json:"viewport"`
}

const (
	PointerDown   = "down"
	PointerMove   = "move"
	PointerUp     = "up"
	PointerCancel = "cancel"
)

// PointerEventRequest carries viewport coordinates as reported by the viewer.
type PointerEventRequest struct {
	Phase string  `json:"phase" validate:"required,oneof=down move up cancel"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	// Content and SelectedText are attached to the annotation created on "up".
	Content      *string `json:"content" validate:"omitempty,max=10000"`
	SelectedText *string `json:"selected_text" validate:"omitempty,max=10000"`
}

type SelectAnnotationRequest struct {
	AnnotationId *uuid.UUID `json:"annotation_id"`
}

type AuthoringSessionResponse struct {
	Id          uuid.UUID            `json:"id"`
	DocumentId  uuid.UUID            `json:"document_id"`
	State       authoring.Snapshot   `json:"state"`
	Annotations []AnnotationResponse `json:"annotations"`
}

// PointerEventResponse reports the annotation committed by a pointer-up, if any.
type PointerEventResponse struct {
	State      authoring.Snapshot  `json:"state"`
	Annotation *AnnotationResponse `json:"annotation,omitempty"`
}
