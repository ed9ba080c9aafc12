package legacy

import (
	"encoding/json"
	"fmt"

	"github.com/flxzt/rnotefmt/pkg/snapshot"
)

// RnoteFileMaj0Min13 is the newest legacy schema, written by 0.13.x — the
// last releases before the binary prelude format. Stroke and chrono
// components are keyed records rather than slotmap slots.
type RnoteFileMaj0Min13 struct {
	EngineSnapshot EngineSnapshotMin13 `json:"engine_snapshot"`
}

// EngineSnapshotMin13 mirrors the current engine snapshot closely enough
// that the final lift is a direct decode.
type EngineSnapshotMin13 struct {
	Document         map[string]any `json:"document"`
	StrokeComponents []KeyedStroke  `json:"stroke_components"`
	ChronoComponents []KeyedChrono  `json:"chrono_components"`
}

// KeyedStroke pairs a store key with a stroke record.
type KeyedStroke struct {
	Key    uint64         `json:"key"`
	Stroke map[string]any `json:"stroke"`
}

// KeyedChrono pairs a store key with the stroke's insertion order.
type KeyedChrono struct {
	Key uint64 `json:"key"`
	T   uint32 `json:"chrono"`
}

// Upgrade on the newest legacy schema is the identity.
func (f *RnoteFileMaj0Min13) Upgrade() (*RnoteFileMaj0Min13, error) {
	return f, nil
}

// StrokeCount returns the number of stroke records in the file.
func (f *RnoteFileMaj0Min13) StrokeCount() int {
	return len(f.EngineSnapshot.StrokeComponents)
}

// ToEngineSnapshot lifts the newest legacy schema into the current typed
// engine snapshot. Unknown stroke fields from historical writers are
// dropped here, stroke content and ordering are not.
func (f *RnoteFileMaj0Min13) ToEngineSnapshot() (*snapshot.EngineSnapshot, error) {
	data, err := json.Marshal(f.EngineSnapshot)
	if err != nil {
		return nil, fmt.Errorf("re-encoding legacy engine snapshot: %w", err)
	}
	snap := new(snapshot.EngineSnapshot)
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("decoding legacy engine snapshot: %w", err)
	}
	return snap, nil
}
