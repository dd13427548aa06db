// Package authoring holds the pointer-driven tool state for one page of a
// document: which tool is armed, the shape being drawn and the annotation
// currently selected.
package authoring

import (
	"fmt"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/pkg/geometry"

	"github.com/google/uuid"
)

const (
	StateIdle      = "idle"
	StateToolArmed = "tool_armed"
	StateDrawing   = "drawing"
)

// State is one of Idle, ToolArmed or Drawing.
type State interface {
	Name() string
	state()
}

type Idle struct{}

type ToolArmed struct {
	Tool Tool
}

// Drawing is entered on pointer-down. Start and Current are page-relative.
type Drawing struct {
	Tool    Tool
	Start   geometry.Point
	Current geometry.Point
	// Path holds every sampled point for freehand tools, starting at Start.
	Path []geometry.Point
}

func (Idle) Name() string      { return StateIdle }
func (ToolArmed) Name() string { return StateToolArmed }
func (Drawing) Name() string   { return StateDrawing }

func (Idle) state()      {}
func (ToolArmed) state() {}
func (Drawing) state()   {}

type Tool struct {
	Type        entity.AnnotationType  `json:"type"`
	Color       entity.AnnotationColor `json:"color"`
	StrokeWidth float64                `json:"stroke_width,omitempty"`
	StampKind   string                 `json:"stamp_kind,omitempty"`
	FontSize    float64                `json:"font_size,omitempty"`
}

const (
	DefaultStrokeWidth = 2
	DefaultFontSize    = 12
	DefaultStampKind   = "approved"
)

// withDefaults fills the type-specific fields left empty by the caller.
func (t Tool) withDefaults() Tool {
	switch t.Type {
	case entity.AnnotationTypeDrawing:
		if t.StrokeWidth == 0 {
			t.StrokeWidth = DefaultStrokeWidth
		}
	case entity.AnnotationTypeStamp:
		if t.StampKind == "" {
			t.StampKind = DefaultStampKind
		}
	case entity.AnnotationTypeText:
		if t.FontSize == 0 {
			t.FontSize = DefaultFontSize
		}
	}
	return t
}

func (t Tool) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown tool %q", ErrInvalidTool, t.Type)
	}
	if !t.Color.Valid() {
		return fmt.Errorf("%w: color %q is not in the palette", ErrInvalidTool, t.Color)
	}
	if t.StrokeWidth < 0 || t.FontSize < 0 {
		return fmt.Errorf("%w: sizes must be non-negative", ErrInvalidTool)
	}
	if t.Type == entity.AnnotationTypeStamp && t.StampKind != "" && !entity.ValidStampKind(t.StampKind) {
		return fmt.Errorf("%w: unknown stamp %q", ErrInvalidTool, t.StampKind)
	}
	return nil
}

// Draft is a committed shape ready to be persisted as an annotation.
type Draft struct {
	PageNumber int                    `json:"page_number"`
	Type       entity.AnnotationType  `json:"type"`
	Color      entity.AnnotationColor `json:"color"`
	Position   geometry.Rect          `json:"position"`
	Properties map[string]interface{} `json:"properties"`
}

// Snapshot is a copy of the machine state safe to hand to other goroutines.
type Snapshot struct {
	State      string            `json:"state"`
	Tool       *Tool             `json:"tool,omitempty"`
	PageNumber int               `json:"page_number"`
	Viewport   geometry.Viewport `json:"viewport"`
	Start      *geometry.Point   `json:"start,omitempty"`
	Current    *geometry.Point   `json:"current,omitempty"`
	Path       string            `json:"path,omitempty"`
	Selected   *uuid.UUID        `json:"selected,omitempty"`
}
