package rnotefile

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/flxzt/rnotefmt/pkg/method"
	"github.com/flxzt/rnotefmt/pkg/snapshot"
)

// genSnapshot builds an engine snapshot from generated stroke endpoints.
func genSnapshot(endpoints [][4]float64) *snapshot.EngineSnapshot {
	snap := snapshot.Default()
	for i, ep := range endpoints {
		snap.StrokeComponents = append(snap.StrokeComponents, snapshot.StrokeComponent{
			Key: uint64(i),
			Stroke: snapshot.Stroke{BrushStroke: &snapshot.BrushStroke{
				Path: snapshot.PenPath{
					Start: snapshot.Element{Pos: [2]float64{ep[0], ep[1]}, Pressure: 0.5},
					Segments: []snapshot.Segment{
						{LineTo: &snapshot.LineTo{End: snapshot.Element{Pos: [2]float64{ep[2], ep[3]}, Pressure: 0.5}}},
					},
				},
				Style: snapshot.BrushStyle{Width: 2.0, Color: 0xff, Kind: "solid"},
			}},
		})
		snap.ChronoComponents = append(snap.ChronoComponents, snapshot.ChronoComponent{
			Key: uint64(i),
			T:   uint32(i + 1),
		})
	}
	return snap
}

// TestContainerProperties verifies invariants of the container over
// generated inputs. These must hold for every representable snapshot and
// every method combination.
func TestContainerProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	genEndpoint := gopter.CombineGens(
		gen.Float64Range(-5000, 5000),
		gen.Float64Range(-5000, 5000),
		gen.Float64Range(-5000, 5000),
		gen.Float64Range(-5000, 5000),
	).Map(func(vals []interface{}) [4]float64 {
		return [4]float64{
			vals[0].(float64), vals[1].(float64),
			vals[2].(float64), vals[3].(float64),
		}
	})

	properties.Property("save then load recovers the snapshot", prop.ForAll(
		func(endpoints [][4]float64, serPick, compPick uint8) bool {
			serializations := []method.SerializationMethod{
				method.SerializationJSON,
				method.SerializationBincode,
				method.SerializationBitcode,
				method.SerializationPostcard,
			}
			compressions := []method.CompressionMethod{
				method.NoCompression(),
				method.GzipCompression(),
				method.ZstdCompression(),
			}
			header := RnoteHeader{
				Serialization: serializations[int(serPick)%len(serializations)],
				Compression:   compressions[int(compPick)%len(compressions)],
			}

			snap := genSnapshot(endpoints)
			file, err := New(header, snap)
			if err != nil {
				return false
			}
			data, err := file.SaveAsBytes()
			if err != nil {
				return false
			}
			loaded, err := LoadFromBytes(data)
			if err != nil {
				return false
			}
			round, err := loaded.ExtractSnapshot()
			if err != nil {
				return false
			}
			return snap.Equal(round) && loaded.Header.Serialization == header.Serialization
		},
		gen.SliceOf(genEndpoint),
		gen.UInt8(),
		gen.UInt8(),
	))

	properties.Property("saved files always start with the magic number", prop.ForAll(
		func(endpoints [][4]float64) bool {
			file, err := New(DefaultHeader(), genSnapshot(endpoints))
			if err != nil {
				return false
			}
			data, err := file.SaveAsBytes()
			if err != nil {
				return false
			}
			return hasMagic(data)
		},
		gen.SliceOf(genEndpoint),
	))

	properties.Property("buffers without a known magic are rejected", prop.ForAll(
		func(data []byte) bool {
			// Generated noise that happens to start with a known magic is
			// out of scope here; those prefixes route to real parsers.
			if hasMagic(data) || (len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b) {
				return true
			}
			_, err := LoadFromBytes(data)
			return err != nil
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
