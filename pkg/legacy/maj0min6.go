package legacy

import (
	"encoding/json"
	"fmt"
)

// RnoteFileMaj0Min6 is the schema of releases 0.5.10 through 0.8.x.
type RnoteFileMaj0Min6 struct {
	Document      map[string]any
	StoreSnapshot map[string]any
}

func (f *RnoteFileMaj0Min6) UnmarshalJSON(data []byte) error {
	var inner RnoteFileMaj0Min5Patch8
	if err := json.Unmarshal(data, &inner); err != nil {
		return err
	}
	f.Document = inner.Document
	f.StoreSnapshot = inner.StoreSnapshot
	return nil
}

func (f RnoteFileMaj0Min6) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"document":       f.Document,
		"store_snapshot": f.StoreSnapshot,
	})
}

// Upgrade merges the separate document/store-snapshot pair into the single
// engine snapshot object release 0.9.0 introduced. The document nests under
// the engine snapshot's "document" key; the old "sheet" spelling has
// already been migrated by the schema decoder.
func (f *RnoteFileMaj0Min6) Upgrade() (*RnoteFileMaj0Min9, error) {
	if f.StoreSnapshot == nil {
		return nil, fmt.Errorf("file has no `store_snapshot` value")
	}
	if f.Document == nil {
		return nil, fmt.Errorf("file has no `document` value")
	}

	engine := make(map[string]any, len(f.StoreSnapshot)+1)
	for key, value := range f.StoreSnapshot {
		engine[key] = value
	}
	engine["document"] = f.Document

	return &RnoteFileMaj0Min9{EngineSnapshot: engine}, nil
}
