package service

import (
	"fmt"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/pkg/authoring"
	"legal-annotation-be/pkg/geometry"
)

// validateAnnotation checks an annotation against the page it sits on.
// Coordinates are page-relative and unscaled.
func validateAnnotation(a *entity.Annotation, document *entity.Document, minShapeSize float64) error {
	if !a.Type.Valid() {
		return dto.NewValidationError("type", "unknown annotation type %q", a.Type)
	}
	if !a.Color.Valid() {
		return dto.NewValidationError("color", "color %q is not in the palette", a.Color)
	}
	if a.PageNumber < 1 {
		return dto.NewValidationError("page_number", "must be at least 1")
	}
	if document.PageCount > 0 && a.PageNumber > document.PageCount {
		return dto.NewValidationError("page_number", "document has %d pages", document.PageCount)
	}

	rect := geometry.Rect{X: a.Position.X, Y: a.Position.Y, Width: a.Position.Width, Height: a.Position.Height}
	if !rect.NonNegative() {
		return dto.NewValidationError("position", "must be non-negative")
	}
	max := rect.Max()
	if document.PageWidth > 0 && max.X > document.PageWidth+geometry.Epsilon {
		return dto.NewValidationError("position", "extends past the page width %g", document.PageWidth)
	}
	if document.PageHeight > 0 && max.Y > document.PageHeight+geometry.Epsilon {
		return dto.NewValidationError("position", "extends past the page height %g", document.PageHeight)
	}

	if a.Type.Rectangular() && !rect.AtLeast(minShapeSize) {
		return dto.NewValidationError("position", "must be at least %g x %g", minShapeSize, minShapeSize)
	}

	switch a.Type {
	case entity.AnnotationTypeDrawing:
		return validateDrawing(a)
	case entity.AnnotationTypeStamp:
		kind, ok := a.Properties[entity.PropertyStampKind]
		if !ok {
			return nil
		}
		if s, isString := kind.(string); !isString || !entity.ValidStampKind(s) {
			return dto.NewValidationError("properties.stamp_kind", "must be one of %v", entity.StampKinds)
		}
	case entity.AnnotationTypeText:
		return positiveNumber(a.Properties, entity.PropertyFontSize)
	}
	return nil
}

func validateDrawing(a *entity.Annotation) error {
	raw, ok := a.Properties[entity.PropertyPath].(string)
	if !ok || raw == "" {
		return dto.NewValidationError("properties.path", "is required for drawings")
	}
	points, err := authoring.ParsePathData(raw)
	if err != nil {
		return dto.NewValidationError("properties.path", "%s", err.Error())
	}
	segment := false
	for i := 1; i < len(points); i++ {
		if !points[i].Equal(points[i-1]) {
			segment = true
			break
		}
	}
	if !segment {
		return dto.NewValidationError("properties.path", "needs at least one line segment")
	}
	for _, p := range points {
		if p.X < 0 || p.Y < 0 {
			return dto.NewValidationError("properties.path", "must be non-negative")
		}
	}
	return positiveNumber(a.Properties, entity.PropertyStrokeWidth)
}

// positiveNumber accepts a missing key.
func positiveNumber(properties map[string]interface{}, key string) error {
	v, ok := properties[key]
	if !ok {
		return nil
	}
	n, isNumber := toFloat(v)
	if !isNumber || n <= 0 {
		return dto.NewValidationError(fmt.Sprintf("properties.%s", key), "must be a positive number")
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
