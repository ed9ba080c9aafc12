package legacy

import (
	"encoding/json"
	"fmt"
)

// RnoteFileMaj0Min9 is the schema of releases 0.9.0 through 0.12.x: one
// engine snapshot object whose stroke and chrono components are serialized
// in slotmap form, arrays of {"value": ...} slots where null marks an empty
// slot.
type RnoteFileMaj0Min9 struct {
	EngineSnapshot map[string]any `json:"engine_snapshot"`
}

func (f *RnoteFileMaj0Min9) UnmarshalJSON(data []byte) error {
	var raw struct {
		EngineSnapshot map[string]any `json:"engine_snapshot"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.EngineSnapshot == nil {
		return fmt.Errorf("file has no `engine_snapshot` value")
	}
	f.EngineSnapshot = raw.EngineSnapshot
	return nil
}

// Upgrade flattens the slotmap-shaped component arrays into keyed records,
// the shape release 0.13.0 switched to. Null slots are empty slotmap
// entries, not strokes, and are skipped; every non-null slot must be well
// formed or the conversion fails.
func (f *RnoteFileMaj0Min9) Upgrade() (*RnoteFileMaj0Min13, error) {
	document, ok := f.EngineSnapshot["document"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("`engine_snapshot` has no `document` object")
	}

	strokeComponents, err := strokeComponentsOf(f.EngineSnapshot)
	if err != nil {
		return nil, fmt.Errorf("`engine_snapshot`: %w", err)
	}
	strokes := make([]KeyedStroke, 0, len(strokeComponents))
	for i, entry := range strokeComponents {
		stroke, err := strokeValueOf(entry, i)
		if err != nil {
			return nil, err
		}
		if stroke == nil {
			continue
		}
		strokes = append(strokes, KeyedStroke{Key: uint64(i), Stroke: stroke})
	}

	rawChronos, ok := f.EngineSnapshot["chrono_components"]
	if !ok {
		return nil, fmt.Errorf("`engine_snapshot` has no value `chrono_components`")
	}
	chronoComponents, ok := rawChronos.([]any)
	if !ok {
		return nil, fmt.Errorf("value `chrono_components` is not a JSON array")
	}
	chronos := make([]KeyedChrono, 0, len(chronoComponents))
	for i, entry := range chronoComponents {
		slot, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("chrono slot %d is not a JSON object", i)
		}
		raw, ok := slot["value"]
		if !ok {
			return nil, fmt.Errorf("chrono slot %d has no `value`", i)
		}
		if raw == nil {
			continue
		}
		chrono, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("chrono slot %d value is not a JSON object", i)
		}
		t, ok := chrono["t"].(float64)
		if !ok {
			return nil, fmt.Errorf("chrono slot %d has no numeric `t` value", i)
		}
		chronos = append(chronos, KeyedChrono{Key: uint64(i), T: uint32(t)})
	}

	return &RnoteFileMaj0Min13{
		EngineSnapshot: EngineSnapshotMin13{
			Document:         document,
			StrokeComponents: strokes,
			ChronoComponents: chronos,
		},
	}, nil
}
