// Package config loads the persistent save preferences: which serialization
// and compression methods new documents are written with, and whether saved
// files are pinned to their current methods.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/flxzt/rnotefmt/pkg/method"
)

var validate = validator.New()

// SavePrefs is the on-disk preferences shape.
type SavePrefs struct {
	Serialization string `yaml:"serialization" validate:"required,oneof=json bincode bitcode postcard"`
	Compression   string `yaml:"compression" validate:"required,oneof=none gzip zstd"`
	// CompressionLevel overrides the codec's default level when set.
	CompressionLevel *int `yaml:"compression_level,omitempty" validate:"omitempty,min=0,max=22"`
	MethodLock       bool `yaml:"method_lock"`
}

// Default returns the preferences new installations start with.
func Default() SavePrefs {
	return SavePrefs{
		Serialization: method.DefaultSerialization().String(),
		Compression:   method.DefaultCompression().Kind.String(),
		MethodLock:    false,
	}
}

// LoadFromPath reads and validates preferences from a YAML file.
func LoadFromPath(path string) (SavePrefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SavePrefs{}, fmt.Errorf("reading save preferences %s: %w", path, err)
	}
	var prefs SavePrefs
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return SavePrefs{}, fmt.Errorf("parsing save preferences %s: %w", path, err)
	}
	prefs.normalize()
	if err := prefs.Validate(); err != nil {
		return SavePrefs{}, fmt.Errorf("invalid save preferences %s: %w", path, err)
	}
	return prefs, nil
}

// normalize lowercases the method identifiers so hand-edited files with
// mixed case still validate.
func (p *SavePrefs) normalize() {
	p.Serialization = strings.ToLower(strings.TrimSpace(p.Serialization))
	p.Compression = strings.ToLower(strings.TrimSpace(p.Compression))
}

// Validate checks the preferences against the known methods and level
// ranges. The struct tags gate the identifier sets and the coarse level
// bounds; the per-codec level range is checked by resolving.
func (p SavePrefs) Validate() error {
	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	if _, err := p.ResolveCompression(); err != nil {
		return err
	}
	return nil
}

// ResolveSerialization returns the configured serialization method.
func (p SavePrefs) ResolveSerialization() (method.SerializationMethod, error) {
	return method.ParseSerializationMethod(p.Serialization)
}

// ResolveCompression returns the configured compression method, with the
// level override applied and range-checked against the chosen codec.
func (p SavePrefs) ResolveCompression() (method.CompressionMethod, error) {
	m, err := method.ParseCompressionMethod(p.Compression)
	if err != nil {
		return method.CompressionMethod{}, err
	}
	if p.CompressionLevel != nil {
		if err := m.UpdateCompressionLevel(*p.CompressionLevel); err != nil {
			return method.CompressionMethod{}, err
		}
	}
	return m, nil
}

// formatValidationError converts validator errors into plain messages.
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, e := range validationErrs {
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", e.Field())
		case "oneof":
			return fmt.Errorf("%s: must be one of %s", e.Field(), e.Param())
		case "min", "max":
			return fmt.Errorf("%s: out of range (%s %s)", e.Field(), e.Tag(), e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", e.Field(), e.Tag())
		}
	}
	return err
}
