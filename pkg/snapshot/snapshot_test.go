package snapshot

import (
	"encoding/json"
	"testing"
)

func TestDefaultSnapshot(t *testing.T) {
	snap := Default()

	if snap.StrokeCount() != 0 {
		t.Errorf("Expected empty default snapshot, got %d strokes", snap.StrokeCount())
	}
	if snap.Document.Format.Dpi != 96.0 {
		t.Errorf("Expected default dpi 96, got %f", snap.Document.Format.Dpi)
	}
}

func TestSnapshotEqual(t *testing.T) {
	a := Default()
	b := Default()

	if !a.Equal(b) {
		t.Error("Two default snapshots should be equal")
	}

	b.StrokeComponents = append(b.StrokeComponents, StrokeComponent{
		Key: 1,
		Stroke: Stroke{
			BrushStroke: &BrushStroke{
				Path: PenPath{
					Start: Element{Pos: [2]float64{1, 2}, Pressure: 0.5},
				},
				Style: BrushStyle{Width: 2.0, Color: 0xff0000ff, Kind: "solid"},
			},
		},
	})

	if a.Equal(b) {
		t.Error("Snapshots with different stroke counts should not be equal")
	}

	var nilSnap *EngineSnapshot
	if a.Equal(nilSnap) {
		t.Error("Snapshot should not equal nil")
	}
}

func TestStrokeKind(t *testing.T) {
	cases := []struct {
		stroke Stroke
		want   string
	}{
		{Stroke{BrushStroke: &BrushStroke{}}, "brushstroke"},
		{Stroke{ShapeStroke: &ShapeStroke{Shape: "line"}}, "shapestroke"},
		{Stroke{TextStroke: &TextStroke{Text: "hi"}}, "textstroke"},
		{Stroke{}, ""},
	}
	for _, tc := range cases {
		if got := tc.stroke.Kind(); got != tc.want {
			t.Errorf("Kind() = %q, want %q", got, tc.want)
		}
	}
}

func TestStrokeJSONCarriesSingleVariant(t *testing.T) {
	stroke := Stroke{ShapeStroke: &ShapeStroke{
		Shape: "rectangle",
		Start: [2]float64{0, 0},
		End:   [2]float64{10, 20},
		Color: 0xff,
	}}

	data, err := json.Marshal(stroke)
	if err != nil {
		t.Fatalf("Failed to marshal stroke: %v", err)
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("Failed to unmarshal stroke: %v", err)
	}
	if len(generic) != 1 {
		t.Fatalf("Expected exactly one variant key, got %d: %s", len(generic), data)
	}
	if _, ok := generic["shapestroke"]; !ok {
		t.Errorf("Expected shapestroke key, got %s", data)
	}
}
