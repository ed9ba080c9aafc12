package legacy

import (
	"encoding/json"
	"fmt"
)

// RnoteFileMaj0Min5Patch9 is the schema of release 0.5.9: same document and
// store snapshot pair as its predecessor, but brushstroke pen paths already
// use the {start, segments} form.
type RnoteFileMaj0Min5Patch9 struct {
	Document      map[string]any
	StoreSnapshot map[string]any
}

func (f *RnoteFileMaj0Min5Patch9) UnmarshalJSON(data []byte) error {
	var inner RnoteFileMaj0Min5Patch8
	if err := json.Unmarshal(data, &inner); err != nil {
		return err
	}
	f.Document = inner.Document
	f.StoreSnapshot = inner.StoreSnapshot
	return nil
}

func (f RnoteFileMaj0Min5Patch9) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"document":       f.Document,
		"store_snapshot": f.StoreSnapshot,
	})
}

// Upgrade merges marker strokes into brush strokes, the change release
// 0.6.0 made when the separate marker pen was removed. The marker's
// remaining settings move under a "marker" style record; the pen path
// carries over unchanged.
func (f *RnoteFileMaj0Min5Patch9) Upgrade() (*RnoteFileMaj0Min6, error) {
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

		rawMarker, ok := stroke["markerstroke"]
		if !ok {
			continue
		}
		marker, ok := rawMarker.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("stroke %d: `markerstroke` is not a JSON object", i)
		}
		path, ok := marker["path"]
		if !ok {
			return nil, fmt.Errorf("stroke %d: markerstroke has no `path` value", i)
		}

		style := map[string]any{}
		for key, value := range marker {
			if key != "path" {
				style[key] = value
			}
		}

		delete(stroke, "markerstroke")
		stroke["brushstroke"] = map[string]any{
			"path":  path,
			"style": map[string]any{"marker": style},
		}
	}

	return &RnoteFileMaj0Min6{
		Document:      f.Document,
		StoreSnapshot: f.StoreSnapshot,
	}, nil
}
