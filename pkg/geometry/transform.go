// Package geometry converts pointer coordinates between the viewport of a
// rendered page and the page-relative frame annotations are stored in.
//
// Stored coordinates are unscaled and unrotated: a rectangle drawn while the
// page is displayed at 150% and rotated 90 degrees is saved exactly as if it
// had been drawn on the page in its natural orientation at 100%.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the tolerance used when comparing transformed coordinates.
const Epsilon = 1e-9

var ErrInvalidScale = errors.New("scale must be a positive finite number")

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Equal reports whether two points match within Epsilon.
func (p Point) Equal(o Point) bool {
	return math.Abs(p.X-o.X) <= Epsilon && math.Abs(p.Y-o.Y) <= Epsilon
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the normalized rectangle spanned by two corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// BoundingBox returns the smallest rectangle containing every point.
func BoundingBox(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (r Rect) Max() Point {
	return Point{X: r.X + r.Width, Y: r.Y + r.Height}
}

// NonNegative reports whether the rectangle has a non-negative origin and size.
func (r Rect) NonNegative() bool {
	return r.X >= 0 && r.Y >= 0 && r.Width >= 0 && r.Height >= 0
}

// AtLeast reports whether both sides reach the given minimum.
func (r Rect) AtLeast(min float64) bool {
	return r.Width >= min && r.Height >= min
}

// Viewport describes how a page is currently drawn on screen.
type Viewport struct {
	// OriginX/OriginY locate the annotation layer's top-left corner in
	// viewport coordinates.
	OriginX float64 `json:"origin_x"`
	OriginY float64 `json:"origin_y"`

	Scale    float64 `json:"scale"`
	Rotation int     `json:"rotation"`

	// PageWidth/PageHeight are the unscaled page dimensions in its natural
	// orientation. Zero means unknown, which disables clamping.
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`
}

// Identity returns a viewport with no offset, scale 1 and no rotation.
func Identity() Viewport {
	return Viewport{Scale: 1}
}

// NormalizeRotation folds any multiple of 90 degrees into 0, 90, 180 or 270.
func NormalizeRotation(deg int) (int, error) {
	if deg%90 != 0 {
		return 0, fmt.Errorf("rotation %d is not a multiple of 90", deg)
	}
	r := deg % 360
	if r < 0 {
		r += 360
	}
	return r, nil
}

func (v Viewport) Validate() error {
	if v.Scale <= 0 || math.IsNaN(v.Scale) || math.IsInf(v.Scale, 0) {
		return ErrInvalidScale
	}
	if v.PageWidth < 0 || v.PageHeight < 0 {
		return fmt.Errorf("page size must be non-negative, got %gx%g", v.PageWidth, v.PageHeight)
	}
	if _, err := NormalizeRotation(v.Rotation); err != nil {
		return err
	}
	return nil
}

// Normalized returns a copy with the rotation folded into [0, 360).
func (v Viewport) Normalized() (Viewport, error) {
	if err := v.Validate(); err != nil {
		return v, err
	}
	v.Rotation, _ = NormalizeRotation(v.Rotation)
	return v, nil
}

func (v Viewport) rotation() int {
	r, err := NormalizeRotation(v.Rotation)
	if err != nil {
		return 0
	}
	return r
}

// ToPage maps a viewport point into the page-relative frame.
func (v Viewport) ToPage(p Point) Point {
	q := Point{
		X: (p.X - v.OriginX) / v.Scale,
		Y: (p.Y - v.OriginY) / v.Scale,
	}
	w, h := v.PageWidth, v.PageHeight
	switch v.rotation() {
	case 90:
		return Point{X: q.Y, Y: h - q.X}
	case 180:
		return Point{X: w - q.X, Y: h - q.Y}
	case 270:
		return Point{X: w - q.Y, Y: q.X}
	default:
		return q
	}
}

// ToViewport maps a page-relative point back onto the viewport.
func (v Viewport) ToViewport(p Point) Point {
	w, h := v.PageWidth, v.PageHeight
	var q Point
	switch v.rotation() {
	case 90:
		q = Point{X: h - p.Y, Y: p.X}
	case 180:
		q = Point{X: w - p.X, Y: h - p.Y}
	case 270:
		q = Point{X: p.Y, Y: w - p.X}
	default:
		q = p
	}
	return Point{
		X: q.X*v.Scale + v.OriginX,
		Y: q.Y*v.Scale + v.OriginY,
	}
}

// RectToPage maps a viewport rectangle into the page frame.
func (v Viewport) RectToPage(r Rect) Rect {
	return RectFromPoints(v.ToPage(Point{X: r.X, Y: r.Y}), v.ToPage(r.Max()))
}

// RectToViewport maps a stored rectangle onto the viewport for rendering.
func (v Viewport) RectToViewport(r Rect) Rect {
	return RectFromPoints(v.ToViewport(Point{X: r.X, Y: r.Y}), v.ToViewport(r.Max()))
}

// Clamp keeps a page point inside the page. Unknown dimensions only clamp
// at zero.
func (v Viewport) Clamp(p Point) Point {
	p.X = math.Max(p.X, 0)
	p.Y = math.Max(p.Y, 0)
	if v.PageWidth > 0 {
		p.X = math.Min(p.X, v.PageWidth)
	}
	if v.PageHeight > 0 {
		p.Y = math.Min(p.Y, v.PageHeight)
	}
	return p
}
