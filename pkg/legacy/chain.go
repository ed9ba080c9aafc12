package legacy

import (
	"encoding/json"
	"fmt"

	"github.com/blang/semver/v4"
)

// chainEntry binds one historical version range to its schema decoder plus
// the conversion chain from that schema up to the newest legacy schema.
type chainEntry struct {
	// rangeSpec is the inclusive lower bound of the releases that wrote
	// this schema. The ranges nest: every entry's range also satisfies all
	// ranges below it, so matching walks the table newest-first and the
	// first hit wins.
	rangeSpec string
	versions  semver.Range
	load      func(data json.RawMessage) (*RnoteFileMaj0Min13, error)
}

// upgradeChain is the full dispatch table, newest first. Adding a future
// legacy format means prepending one entry and writing one Upgrade step;
// existing entries stay untouched.
var upgradeChain = []chainEntry{
	{rangeSpec: ">=0.13.0", load: loadMin13},
	{rangeSpec: ">=0.9.0", load: loadMin9},
	{rangeSpec: ">=0.5.10", load: loadMin6},
	{rangeSpec: ">=0.5.9", load: loadPatch9},
	{rangeSpec: ">=0.5.0", load: loadPatch8},
}

func init() {
	for i := range upgradeChain {
		upgradeChain[i].versions = semver.MustParseRange(upgradeChain[i].rangeSpec)
	}
}

func loadMin13(data json.RawMessage) (*RnoteFileMaj0Min13, error) {
	var file RnoteFileMaj0Min13
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("deserializing RnoteFileMaj0Min13: %w", err)
	}
	return file.Upgrade()
}

func loadMin9(data json.RawMessage) (*RnoteFileMaj0Min13, error) {
	var file RnoteFileMaj0Min9
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("deserializing RnoteFileMaj0Min9: %w", err)
	}
	out, err := file.Upgrade()
	if err != nil {
		return nil, fmt.Errorf("converting RnoteFileMaj0Min9 to newest legacy version: %w", err)
	}
	return out, nil
}

func loadMin6(data json.RawMessage) (*RnoteFileMaj0Min13, error) {
	var file RnoteFileMaj0Min6
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("deserializing RnoteFileMaj0Min6: %w", err)
	}
	min9, err := file.Upgrade()
	if err != nil {
		return nil, fmt.Errorf("converting RnoteFileMaj0Min6 to newest legacy version: %w", err)
	}
	return min9.Upgrade()
}

func loadPatch9(data json.RawMessage) (*RnoteFileMaj0Min13, error) {
	var file RnoteFileMaj0Min5Patch9
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("deserializing RnoteFileMaj0Min5Patch9: %w", err)
	}
	min6, err := file.Upgrade()
	if err != nil {
		return nil, fmt.Errorf("converting RnoteFileMaj0Min5Patch9 to newest legacy version: %w", err)
	}
	min9, err := min6.Upgrade()
	if err != nil {
		return nil, err
	}
	return min9.Upgrade()
}

func loadPatch8(data json.RawMessage) (*RnoteFileMaj0Min13, error) {
	var file RnoteFileMaj0Min5Patch8
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("deserializing RnoteFileMaj0Min5Patch8: %w", err)
	}
	patch9, err := file.Upgrade()
	if err != nil {
		return nil, fmt.Errorf("converting RnoteFileMaj0Min5Patch8 to newest legacy version: %w", err)
	}
	min6, err := patch9.Upgrade()
	if err != nil {
		return nil, err
	}
	min9, err := min6.Upgrade()
	if err != nil {
		return nil, err
	}
	return min9.Upgrade()
}

// LoadFromBytes inflates a legacy wrapper file, matches its version against
// the dispatch table newest-first, and walks the conversion chain to the
// newest legacy schema. A version matching no known range is a hard error
// naming that version.
func LoadFromBytes(data []byte) (*RnoteFileMaj0Min13, error) {
	inflated, err := decompressGzip(data)
	if err != nil {
		return nil, err
	}

	var w wrapper
	if err := json.Unmarshal(inflated, &w); err != nil {
		return nil, fmt.Errorf("deserializing legacy file wrapper: %w", err)
	}

	version, err := semver.ParseTolerant(w.Version)
	if err != nil {
		return nil, fmt.Errorf("parsing legacy wrapper version %q: %w", w.Version, err)
	}

	for _, entry := range upgradeChain {
		if entry.versions(version) {
			return entry.load(w.Data)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, w.Version)
}
