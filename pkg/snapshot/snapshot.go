// Package snapshot defines the in-memory document value persisted by the
// rnote file container. The container treats it as an opaque serializable
// value; the concrete shape lives here so every serialization codec and the
// legacy upgrade chain target the same types.
package snapshot

import "reflect"

// EngineSnapshot is the whole document content: the document geometry plus
// the stroke store. It is the single value a save operation persists and a
// load operation recovers.
type EngineSnapshot struct {
	Document         Document          `json:"document"`
	StrokeComponents []StrokeComponent `json:"stroke_components"`
	ChronoComponents []ChronoComponent `json:"chrono_components"`
}

// Document holds the sheet geometry, page format and background.
type Document struct {
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Format     Format     `json:"format"`
	Background Background `json:"background"`
}

// Format describes a single page of the document.
type Format struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Dpi    float64 `json:"dpi"`
}

// Background describes the document background pattern.
type Background struct {
	Color        uint32     `json:"color"`
	Pattern      string     `json:"pattern"`
	PatternSize  [2]float64 `json:"pattern_size"`
	PatternColor uint32     `json:"pattern_color"`
}

// StrokeComponent pairs a stroke with its store key.
type StrokeComponent struct {
	Key    uint64 `json:"key"`
	Stroke Stroke `json:"stroke"`
}

// ChronoComponent records the insertion order of the stroke with the same key.
type ChronoComponent struct {
	Key uint64 `json:"key"`
	T   uint32 `json:"chrono"`
}

// Default returns an empty snapshot with sensible document defaults.
func Default() *EngineSnapshot {
	return &EngineSnapshot{
		Document: Document{
			Width:  1123.0,
			Height: 1587.0,
			Format: Format{
				Width:  1123.0,
				Height: 1587.0,
				Dpi:    96.0,
			},
			Background: Background{
				Color:        0xffffffff,
				Pattern:      "dots",
				PatternSize:  [2]float64{32.0, 32.0},
				PatternColor: 0xdce1e6ff,
			},
		},
	}
}

// StrokeCount returns the number of strokes in the snapshot.
func (s *EngineSnapshot) StrokeCount() int {
	return len(s.StrokeComponents)
}

// Equal reports whether two snapshots hold equivalent content.
func (s *EngineSnapshot) Equal(other *EngineSnapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return reflect.DeepEqual(*s, *other)
}
