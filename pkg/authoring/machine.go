package authoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/pkg/geometry"

	"github.com/google/uuid"
)

var (
	ErrNoToolArmed = errors.New("no tool armed")
	ErrInvalidTool = errors.New("invalid tool")
	ErrInvalidPage = errors.New("page number must be at least 1")
)

const (
	DefaultMinShapeSize = 5.0

	DefaultTextWidth  = 160.0
	DefaultTextHeight = 24.0
)

type Option func(*Machine)

// WithMinShapeSize sets the smallest width and height, in page units, a
// dragged box needs to be committed.
func WithMinShapeSize(size float64) Option {
	return func(m *Machine) {
		if size > 0 {
			m.minShapeSize = size
		}
	}
}

// Machine is safe for concurrent use.
type Machine struct {
	mu           sync.Mutex
	state        State
	page         int
	viewport     geometry.Viewport
	selected     *uuid.UUID
	minShapeSize float64
}

func NewMachine(page int, viewport geometry.Viewport, opts ...Option) (*Machine, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	vp, err := viewport.Normalized()
	if err != nil {
		return nil, err
	}
	m := &Machine{
		state:        Idle{},
		page:         page,
		viewport:     vp,
		minShapeSize: DefaultMinShapeSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.state.(Drawing); ok {
		d.Path = append([]geometry.Point(nil), d.Path...)
		return d
	}
	return m.state
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		State:      m.state.Name(),
		PageNumber: m.page,
		Viewport:   m.viewport,
	}
	if m.selected != nil {
		id := *m.selected
		s.Selected = &id
	}
	switch st := m.state.(type) {
	case ToolArmed:
		t := st.Tool
		s.Tool = &t
	case Drawing:
		t := st.Tool
		start, current := st.Start, st.Current
		s.Tool = &t
		s.Start = &start
		s.Current = &current
		if len(st.Path) > 0 {
			s.Path = PathData(st.Path)
		}
	}
	return s
}

func (m *Machine) MinShapeSize() float64 {
	return m.minShapeSize
}

// SelectTool arms a tool. A shape being drawn with the previous tool is
// dropped.
func (m *Machine) SelectTool(tool Tool) error {
	if err := tool.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = ToolArmed{Tool: tool.withDefaults()}
	m.selected = nil
	return nil
}

// Deselect returns to Idle from any state and clears the selection.
func (m *Machine) Deselect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Idle{}
	m.selected = nil
}

// Select marks an existing annotation as the edit target. The armed tool is
// released so the next pointer-down does not start a new shape.
func (m *Machine) Select(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Idle{}
	m.selected = &id
}

// ClearSelection drops the edit target and leaves the tool state alone.
func (m *Machine) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = nil
}

func (m *Machine) Selected() *uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return nil
	}
	id := *m.selected
	return &id
}

// SetViewport replaces the current view transform. Points already sampled
// under the old transform cannot be mixed with new ones, so an in-progress
// shape is dropped.
func (m *Machine) SetViewport(viewport geometry.Viewport) error {
	vp, err := viewport.Normalized()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = vp
	m.abortDrawing()
	return nil
}

func (m *Machine) SetPage(page int) error {
	if page < 1 {
		return ErrInvalidPage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if page != m.page {
		m.page = page
		m.selected = nil
		m.abortDrawing()
	}
	return nil
}

// Cancel drops the shape being drawn and keeps the tool armed.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abortDrawing()
}

func (m *Machine) abortDrawing() {
	if d, ok := m.state.(Drawing); ok {
		m.state = ToolArmed{Tool: d.Tool}
	}
}

// PointerDown starts a shape at a viewport point. Pressing again while
// already drawing restarts the shape.
func (m *Machine) PointerDown(p geometry.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tool Tool
	switch st := m.state.(type) {
	case ToolArmed:
		tool = st.Tool
	case Drawing:
		tool = st.Tool
	default:
		return ErrNoToolArmed
	}

	start := m.toPage(p)
	d := Drawing{Tool: tool, Start: start, Current: start}
	if tool.Type == entity.AnnotationTypeDrawing {
		d.Path = []geometry.Point{pathPoint(start)}
	}
	m.state = d
	return nil
}

// PointerMove is ignored unless a shape is being drawn.
func (m *Machine) PointerMove(p geometry.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.state.(Drawing)
	if !ok {
		return
	}
	m.state = m.advance(d, p)
}

// PointerUp finishes the shape and re-arms the tool. A nil draft with a nil
// error means the gesture was too small to keep.
func (m *Machine) PointerUp(p geometry.Point) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.state.(Drawing)
	if !ok {
		return nil, nil
	}
	d = m.advance(d, p)
	m.state = ToolArmed{Tool: d.Tool}
	return m.commit(d), nil
}

func (m *Machine) toPage(p geometry.Point) geometry.Point {
	return m.viewport.Clamp(m.viewport.ToPage(p))
}

func (m *Machine) advance(d Drawing, p geometry.Point) Drawing {
	current := m.toPage(p)
	d.Current = current
	if d.Tool.Type == entity.AnnotationTypeDrawing {
		next := pathPoint(current)
		if last := d.Path[len(d.Path)-1]; !last.Equal(next) {
			d.Path = append(d.Path, next)
		}
	}
	return d
}

func (m *Machine) commit(d Drawing) *Draft {
	draft := &Draft{
		PageNumber: m.page,
		Type:       d.Tool.Type,
		Color:      d.Tool.Color,
		Properties: map[string]interface{}{},
	}
	box := geometry.RectFromPoints(d.Start, d.Current)

	switch d.Tool.Type {
	case entity.AnnotationTypeDrawing:
		// Path points are kept at path precision and consecutive duplicates
		// are never appended, so two points make a segment of non-zero
		// length once rendered.
		if len(d.Path) < 2 {
			return nil
		}
		draft.Position = geometry.BoundingBox(d.Path)
		draft.Properties[entity.PropertyPath] = PathData(d.Path)
		draft.Properties[entity.PropertyStrokeWidth] = d.Tool.StrokeWidth
	case entity.AnnotationTypeText:
		if box.AtLeast(m.minShapeSize) {
			draft.Position = box
		} else {
			draft.Position = m.defaultTextBox(d.Start)
		}
		draft.Properties[entity.PropertyFontSize] = d.Tool.FontSize
	default:
		if !box.AtLeast(m.minShapeSize) {
			return nil
		}
		draft.Position = box
		if d.Tool.Type == entity.AnnotationTypeStamp {
			draft.Properties[entity.PropertyStampKind] = d.Tool.StampKind
		}
	}
	return draft
}

// defaultTextBox places a fixed-size box at the click, shifted left or up
// when the page edge would cut it off. A page smaller than the box gets a
// box the size of the page.
func (m *Machine) defaultTextBox(at geometry.Point) geometry.Rect {
	r := geometry.Rect{X: at.X, Y: at.Y, Width: DefaultTextWidth, Height: DefaultTextHeight}
	if w := m.viewport.PageWidth; w > 0 && r.X+r.Width > w {
		r.Width = math.Min(r.Width, w)
		r.X = w - r.Width
	}
	if h := m.viewport.PageHeight; h > 0 && r.Y+r.Height > h {
		r.Height = math.Min(r.Height, h)
		r.Y = h - r.Height
	}
	return r
}

// PathData renders points as move/line commands: "M x y L x y ...".
func PathData(points []geometry.Point) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatCoord(p.X))
		b.WriteByte(' ')
		b.WriteString(formatCoord(p.Y))
	}
	return b.String()
}

func roundCoord(v float64) float64 {
	return math.Round(v*100) / 100
}

// pathPoint rounds a point to the two decimals PathData writes.
func pathPoint(p geometry.Point) geometry.Point {
	return geometry.Point{X: roundCoord(p.X), Y: roundCoord(p.Y)}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(roundCoord(v), 'f', -1, 64)
}

// ParsePathData reads back a path produced by PathData.
func ParsePathData(path string) ([]geometry.Point, error) {
	fields := strings.Fields(path)
	var points []geometry.Point
	for i := 0; i < len(fields); {
		cmd := fields[i]
		if (cmd != "M" && cmd != "L") || i+2 >= len(fields) {
			return nil, fmt.Errorf("malformed path at token %d", i)
		}
		if (cmd == "M") != (len(points) == 0) {
			return nil, fmt.Errorf("path must start with a single M command")
		}
		x, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed path: %w", err)
		}
		y, err := strconv.ParseFloat(fields[i+2], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed path: %w", err)
		}
		points = append(points, geometry.Point{X: x, Y: y})
		i += 3
	}
	return points, nil
}
