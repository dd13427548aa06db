package entity

import (
	"time"

	"github.com/google/uuid"
)

type AnnotationType string
type AnnotationColor string
type SharePermission string

const (
	AnnotationTypeHighlight AnnotationType = "highlight"
	AnnotationTypeNote      AnnotationType = "note"
	AnnotationTypeDrawing   AnnotationType = "drawing"
	AnnotationTypeText      AnnotationType = "text"
	AnnotationTypeStamp     AnnotationType = "stamp"
)

const (
	ColorYellow AnnotationColor = "yellow"
	ColorGreen  AnnotationColor = "green"
	ColorBlue   AnnotationColor = "blue"
	ColorPink   AnnotationColor = "pink"
	ColorOrange AnnotationColor = "orange"
	ColorRed    AnnotationColor = "red"
	ColorPurple AnnotationColor = "purple"
)

// Ordered by privilege: each level includes the ones before it.
const (
	SharePermissionView    SharePermission = "view"
	SharePermissionComment SharePermission = "comment"
	SharePermissionEdit    SharePermission = "edit"
)

// Keys of the type-specific properties bag.
const (
	PropertyPath        = "path"
	PropertyStrokeWidth = "stroke_width"
	PropertyStampKind   = "stamp_kind"
	PropertyFontSize    = "font_size"
)

var AnnotationTypes = []AnnotationType{
	AnnotationTypeHighlight,
	AnnotationTypeNote,
	AnnotationTypeDrawing,
	AnnotationTypeText,
	AnnotationTypeStamp,
}

// Palette is the fixed set of colors a tool may use.
var Palette = []AnnotationColor{
	ColorYellow,
	ColorGreen,
	ColorBlue,
	ColorPink,
	ColorOrange,
	ColorRed,
	ColorPurple,
}

var StampKinds = []string{"approved", "rejected", "draft", "confidential", "reviewed"}

func (t AnnotationType) Valid() bool {
	for _, v := range AnnotationTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Rectangular reports whether the type is authored by dragging a box that
// must meet the minimum size.
func (t AnnotationType) Rectangular() bool {
	return t == AnnotationTypeHighlight || t == AnnotationTypeNote || t == AnnotationTypeStamp
}

func (c AnnotationColor) Valid() bool {
	for _, v := range Palette {
		if v == c {
			return true
		}
	}
	return false
}

func (p SharePermission) Valid() bool {
	return p.rank() > 0
}

func (p SharePermission) rank() int {
	switch p {
	case SharePermissionView:
		return 1
	case SharePermissionComment:
		return 2
	case SharePermissionEdit:
		return 3
	}
	return 0
}

// Allows reports whether p grants at least the required level.
func (p SharePermission) Allows(required SharePermission) bool {
	return p.rank() >= required.rank() && required.rank() > 0
}

func ValidStampKind(kind string) bool {
	for _, k := range StampKinds {
		if k == kind {
			return true
		}
	}
	return false
}

type Position struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type Annotation struct {
	Id           uuid.UUID
	DocumentId   uuid.UUID
	UserId       uuid.UUID
	PageNumber   int
	Type         AnnotationType
	Color        AnnotationColor
	Position     Position
	Content      *string
	SelectedText *string
	Properties   map[string]interface{}
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Clone returns a deep copy safe to mutate independently.
func (a *Annotation) Clone() *Annotation {
	if a == nil {
		return nil
	}
	c := *a
	if a.Content != nil {
		s := *a.Content
		c.Content = &s
	}
	if a.SelectedText != nil {
		s := *a.SelectedText
		c.SelectedText = &s
	}
	if a.UpdatedAt != nil {
		t := *a.UpdatedAt
		c.UpdatedAt = &t
	}
	if a.Properties != nil {
		c.Properties = make(map[string]interface{}, len(a.Properties))
		for k, v := range a.Properties {
			c.Properties[k] = v
		}
	}
	return &c
}

// SearchableText is what gets embedded for annotation search.
func (a *Annotation) SearchableText() string {
	text := ""
	if a.SelectedText != nil {
		text = *a.SelectedText
	}
	if a.Content != nil && *a.Content != "" {
		if text != "" {
			text += "\n"
		}
		text += *a.Content
	}
	return text
}

type AnnotationComment struct {
	Id           uuid.UUID
	AnnotationId uuid.UUID
	UserId       uuid.UUID
	ParentId     *uuid.UUID
	Content      string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type AnnotationShare struct {
	Id           uuid.UUID
	AnnotationId uuid.UUID
	UserId       uuid.UUID
	Permission   SharePermission
	GrantedBy    uuid.UUID
	CreatedAt    time.Time
}

type AnnotationEmbedding struct {
	Id           uuid.UUID
	AnnotationId uuid.UUID
	Document     string
	Value        []float32
	CreatedAt    time.Time
}
