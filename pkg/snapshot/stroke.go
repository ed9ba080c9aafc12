package snapshot

// Stroke is a closed one-of over the stroke kinds the store persists.
// Exactly one of the pointer fields is set; the JSON form carries only the
// key of the active variant, matching the historical on-disk shape.
type Stroke struct {
	BrushStroke *BrushStroke `json:"brushstroke,omitempty"`
	ShapeStroke *ShapeStroke `json:"shapestroke,omitempty"`
	TextStroke  *TextStroke  `json:"textstroke,omitempty"`
}

// Kind returns the name of the active variant, or "" for an empty stroke.
func (s Stroke) Kind() string {
	switch {
	case s.BrushStroke != nil:
		return "brushstroke"
	case s.ShapeStroke != nil:
		return "shapestroke"
	case s.TextStroke != nil:
		return "textstroke"
	default:
		return ""
	}
}

// BrushStroke is a freehand pen path with a style.
type BrushStroke struct {
	Path  PenPath    `json:"path"`
	Style BrushStyle `json:"style"`
}

// BrushStyle configures how a brush stroke is stroked.
type BrushStyle struct {
	Width float64 `json:"width"`
	Color uint32  `json:"color"`
	Kind  string  `json:"kind"`
}

// ShapeStroke is a geometric shape stroke.
type ShapeStroke struct {
	Shape string     `json:"shape"`
	Start [2]float64 `json:"start"`
	End   [2]float64 `json:"end"`
	Color uint32     `json:"color"`
}

// TextStroke is a positioned text run.
type TextStroke struct {
	Text     string     `json:"text"`
	Pos      [2]float64 `json:"pos"`
	FontSize float64    `json:"font_size"`
	Color    uint32     `json:"color"`
}

// PenPath is a pen path: a start element followed by path segments.
type PenPath struct {
	Start    Element   `json:"start"`
	Segments []Segment `json:"segments"`
}

// Segment is a closed one-of over the path segment kinds.
type Segment struct {
	LineTo    *LineTo    `json:"lineto,omitempty"`
	QuadBezTo *QuadBezTo `json:"quadbezto,omitempty"`
	CubBezTo  *CubBezTo  `json:"cubbezto,omitempty"`
}

// LineTo is a straight segment. Start may equal End for a degenerate
// zero-length segment (upgraded from the historical dot variant).
type LineTo struct {
	Start *Element `json:"start,omitempty"`
	End   Element  `json:"end"`
}

// QuadBezTo is a quadratic bezier segment.
type QuadBezTo struct {
	Start *Element   `json:"start,omitempty"`
	Cp    [2]float64 `json:"cp"`
	End   Element    `json:"end"`
}

// CubBezTo is a cubic bezier segment.
type CubBezTo struct {
	Start *Element   `json:"start,omitempty"`
	Cp1   [2]float64 `json:"cp1"`
	Cp2   [2]float64 `json:"cp2"`
	End   Element    `json:"end"`
}

// Element is a single pen input sample: a position with pressure.
type Element struct {
	Pos      [2]float64 `json:"pos"`
	Pressure float64    `json:"pressure"`
}
