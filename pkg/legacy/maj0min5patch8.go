package legacy

import (
	"encoding/json"
	"fmt"
)

// RnoteFileMaj0Min5Patch8 is the on-disk document schema of releases
// 0.5.0 through 0.5.8. The document key was still spelled "sheet" in the
// oldest writers; both spellings are accepted.
type RnoteFileMaj0Min5Patch8 struct {
	Document      map[string]any
	StoreSnapshot map[string]any
}

// UnmarshalJSON accepts both the "document" and the older "sheet" spelling.
func (f *RnoteFileMaj0Min5Patch8) UnmarshalJSON(data []byte) error {
	var raw struct {
		Document      map[string]any `json:"document"`
		Sheet         map[string]any `json:"sheet"`
		StoreSnapshot map[string]any `json:"store_snapshot"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Document != nil:
		f.Document = raw.Document
	case raw.Sheet != nil:
		f.Document = raw.Sheet
	default:
		return fmt.Errorf("file has neither a `document` nor a `sheet` value")
	}
	if raw.StoreSnapshot == nil {
		return fmt.Errorf("file has no `store_snapshot` value")
	}
	f.StoreSnapshot = raw.StoreSnapshot
	return nil
}

// MarshalJSON always emits the "document" spelling.
func (f RnoteFileMaj0Min5Patch8) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"document":       f.Document,
		"store_snapshot": f.StoreSnapshot,
	})
}

// elementPatch8 is a single pen input sample as the 0.5.x writers stored it.
type elementPatch8 struct {
	Pos      [2]float64 `json:"pos"`
	Pressure float64    `json:"pressure"`
}

// segmentPatch8 is the historical externally-tagged segment union. The
// positional "dot" variant was removed in 0.5.9.
type segmentPatch8 struct {
	Dot *struct {
		Element elementPatch8 `json:"element"`
	} `json:"dot,omitempty"`
	Line *struct {
		Start elementPatch8 `json:"start"`
		End   elementPatch8 `json:"end"`
	} `json:"line,omitempty"`
	QuadBez *struct {
		Start elementPatch8 `json:"start"`
		Cp    [2]float64    `json:"cp"`
		End   elementPatch8 `json:"end"`
	} `json:"quadbez,omitempty"`
	CubBez *struct {
		Start elementPatch8 `json:"start"`
		Cp1   [2]float64    `json:"cp1"`
		Cp2   [2]float64    `json:"cp2"`
		End   elementPatch8 `json:"end"`
	} `json:"cubbez,omitempty"`
}

// startElement returns the segment's starting element.
func (s segmentPatch8) startElement() (elementPatch8, error) {
	switch {
	case s.Dot != nil:
		return s.Dot.Element, nil
	case s.Line != nil:
		return s.Line.Start, nil
	case s.QuadBez != nil:
		return s.QuadBez.Start, nil
	case s.CubBez != nil:
		return s.CubBez.Start, nil
	default:
		return elementPatch8{}, fmt.Errorf("segment carries no known variant")
	}
}

// Upgrade restructures every brushstroke pen path from the positional
// segment list into the {start, segments} form introduced in 0.5.9. A dot
// segment becomes a zero-length lineto. Total over everything the 0.5.x
// writers could produce; a missing or mis-shaped expected field is a
// conversion error, never silently defaulted.
func (f *RnoteFileMaj0Min5Patch8) Upgrade() (*RnoteFileMaj0Min5Patch9, error) {
	strokeComponents, err := strokeComponentsOf(f.StoreSnapshot)
	if err != nil {
		return nil, err
	}

	for i, entry := range strokeComponents {
		stroke, err := strokeValueOf(entry, i)
		if err != nil {
			return nil, err
		}
		if stroke == nil {
			continue
		}

		rawBrush, ok := stroke["brushstroke"]
		if !ok {
			continue
		}
		brush, ok := rawBrush.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("stroke %d: `brushstroke` is not a JSON object", i)
		}
		rawPath, ok := brush["path"]
		if !ok {
			return nil, fmt.Errorf("stroke %d: brushstroke has no `path` value", i)
		}

		pathData, err := json.Marshal(rawPath)
		if err != nil {
			return nil, fmt.Errorf("stroke %d: re-encoding path: %w", i, err)
		}
		var path []segmentPatch8
		if err := json.Unmarshal(pathData, &path); err != nil {
			return nil, fmt.Errorf("stroke %d: decoding pen path: %w", i, err)
		}

		upgraded, err := upgradePenPath(path)
		if err != nil {
			return nil, fmt.Errorf("stroke %d: %w", i, err)
		}
		brush["path"] = upgraded
	}

	return &RnoteFileMaj0Min5Patch9{
		Document:      f.Document,
		StoreSnapshot: f.StoreSnapshot,
	}, nil
}

// upgradePenPath turns a positional segment list into the named-field
// {start, segments} record.
func upgradePenPath(path []segmentPatch8) (map[string]any, error) {
	out := map[string]any{}
	if len(path) == 0 {
		return out, nil
	}

	start, err := path[0].startElement()
	if err != nil {
		return nil, err
	}
	genericStart, err := toGeneric(start)
	if err != nil {
		return nil, err
	}
	out["start"] = genericStart

	segments := make([]any, 0, len(path))
	for _, seg := range path {
		var upgraded map[string]any
		switch {
		case seg.Dot != nil:
			// A dot has no extent; it survives as a zero-length line
			// segment ending on its own element.
			end, err := toGeneric(seg.Dot.Element)
			if err != nil {
				return nil, err
			}
			upgraded = map[string]any{"lineto": map[string]any{"end": end}}
		case seg.Line != nil:
			generic, err := toGeneric(seg.Line)
			if err != nil {
				return nil, err
			}
			upgraded = map[string]any{"lineto": generic}
		case seg.QuadBez != nil:
			generic, err := toGeneric(seg.QuadBez)
			if err != nil {
				return nil, err
			}
			upgraded = map[string]any{"quadbezto": generic}
		case seg.CubBez != nil:
			generic, err := toGeneric(seg.CubBez)
			if err != nil {
				return nil, err
			}
			upgraded = map[string]any{"cubbezto": generic}
		default:
			return nil, fmt.Errorf("pen path segment carries no known variant")
		}
		segments = append(segments, upgraded)
	}
	out["segments"] = segments

	return out, nil
}

// strokeComponentsOf extracts the stroke component slot array from a store
// snapshot.
func strokeComponentsOf(storeSnapshot map[string]any) ([]any, error) {
	raw, ok := storeSnapshot["stroke_components"]
	if !ok {
		return nil, fmt.Errorf("`store_snapshot` has no value `stroke_components`")
	}
	components, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("value `stroke_components` is not a JSON array")
	}
	return components, nil
}

// strokeValueOf unwraps one slot of the stroke component array. Empty slots
// (null values) return nil without error.
func strokeValueOf(entry any, idx int) (map[string]any, error) {
	slot, ok := entry.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("stroke slot %d is not a JSON object", idx)
	}
	raw, ok := slot["value"]
	if !ok {
		return nil, fmt.Errorf("stroke slot %d has no `value`", idx)
	}
	if raw == nil {
		return nil, nil
	}
	stroke, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("stroke slot %d value is not a JSON object", idx)
	}
	return stroke, nil
}
