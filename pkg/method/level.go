package method

import "fmt"

// CompressionLevel is an ordinal, codec-independent tier over a codec's
// native numeric level range. CLI and UI surfaces expose this one scale for
// every codec instead of each codec's own numbers.
type CompressionLevel int

const (
	LevelVeryLow CompressionLevel = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelVeryHigh
)

func (l CompressionLevel) String() string {
	switch l {
	case LevelVeryLow:
		return "very-low"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelVeryHigh:
		return "very-high"
	default:
		return fmt.Sprintf("invalid(%d)", int(l))
	}
}

// Per-codec tier boundaries. Each table entry is the inclusive upper bound
// of the tier at the same index; the canonical tables give the numeric level
// a tier maps back onto.
var (
	gzipTierUpper     = [5]int{1, 3, 5, 7, GzipMaxLevel}
	gzipTierCanonical = [5]int{1, 3, 5, 7, 9}

	zstdTierUpper     = [5]int{3, 8, 13, 18, ZstdMaxLevel}
	zstdTierCanonical = [5]int{1, 5, 9, 15, 21}
)

func tierOf(level int, upper [5]int) CompressionLevel {
	for tier, bound := range upper {
		if level <= bound {
			return CompressionLevel(tier)
		}
	}
	return LevelVeryHigh
}

// GetCompressionLevel bins the method's numeric level into a tier.
// None has no level and always reports Medium.
func (m CompressionMethod) GetCompressionLevel() CompressionLevel {
	switch m.Kind {
	case CompressionGzip:
		return tierOf(m.Level, gzipTierUpper)
	case CompressionZstd:
		return tierOf(m.Level, zstdTierUpper)
	default:
		return LevelMedium
	}
}

// SetCompressionLevel sets the canonical numeric level for the tier on the
// method's codec. A no-op on None.
func (m *CompressionMethod) SetCompressionLevel(level CompressionLevel) {
	if level < LevelVeryLow {
		level = LevelVeryLow
	}
	if level > LevelVeryHigh {
		level = LevelVeryHigh
	}
	switch m.Kind {
	case CompressionGzip:
		m.Level = gzipTierCanonical[level]
	case CompressionZstd:
		m.Level = zstdTierCanonical[level]
	}
}

// WithCompressionLevel returns a copy of the method set to the tier's
// canonical level.
func (m CompressionMethod) WithCompressionLevel(level CompressionLevel) CompressionMethod {
	out := m
	out.SetCompressionLevel(level)
	return out
}
