// Package recovery tracks autosave copies of documents. Each tracked
// document gets two independent files: the recovery copy itself, a normal
// rnote container, and a small JSON sidecar describing it. Losing the
// sidecar loses only the bookkeeping; the recovery copy stays loadable on
// its own.
package recovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flxzt/rnotefmt/pkg/logging"
	"github.com/flxzt/rnotefmt/pkg/rnotefile"
)

const (
	// RecoveryFileExt is the extension of the recovery copy of a document.
	RecoveryFileExt = ".autosave.rnote"
	// MetadataFileExt is the extension of the JSON sidecar.
	MetadataFileExt = ".autosave.json"
)

// Metadata describes one recovery copy. Title and DocumentPath are nil for
// documents that were never saved to a named file.
type Metadata struct {
	Title            *string `json:"title"`
	DocumentPath     *string `json:"document_path"`
	Created          int64   `json:"created"`
	LastChanged      int64   `json:"last_changed"`
	RecoveryFilePath string  `json:"recovery_file_path"`

	// metadataPath is where this record lives on disk. It is derived from
	// the load location, never serialized.
	metadataPath string
}

// now is swapped out in tests.
var now = func() int64 { return time.Now().Unix() }

// New starts tracking a document. Both files live in dir under a fresh
// random name; documentPath is the path of the document being tracked, or
// "" for an unsaved document.
func New(dir, documentPath string) *Metadata {
	name := uuid.NewString()
	meta := &Metadata{
		Created:          now(),
		LastChanged:      now(),
		RecoveryFilePath: filepath.Join(dir, name+RecoveryFileExt),
		metadataPath:     filepath.Join(dir, name+MetadataFileExt),
	}
	if documentPath != "" {
		meta.DocumentPath = &documentPath
		title := titleFromPath(documentPath)
		meta.Title = &title
	}
	return meta
}

// LoadFromPath reads a sidecar back from disk. The metadata path is derived
// from where the file was found, not from its content.
func LoadFromPath(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recovery metadata %s: %w", path, err)
	}
	meta := new(Metadata)
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("parsing recovery metadata %s: %w", path, err)
	}
	meta.metadataPath = path
	return meta, nil
}

// MetadataPath returns where the sidecar lives on disk.
func (m *Metadata) MetadataPath() string {
	return m.metadataPath
}

// Save writes the sidecar with the same atomic-replace discipline as a
// document save.
func (m *Metadata) Save() error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing recovery metadata: %w", err)
	}
	if err := rnotefile.WriteFileAtomic(m.metadataPath, data); err != nil {
		return fmt.Errorf("writing recovery metadata %s: %w", m.metadataPath, err)
	}
	return nil
}

// Update refreshes the change timestamp, always. The document path and the
// title derived from it only move when the path actually changed, so
// repeated autosave ticks against the same document leave them untouched.
func (m *Metadata) Update(newDocumentPath string) {
	m.LastChanged = now()

	if newDocumentPath == "" {
		return
	}
	if m.DocumentPath != nil && *m.DocumentPath == newDocumentPath {
		return
	}
	m.DocumentPath = &newDocumentPath
	title := titleFromPath(newDocumentPath)
	m.Title = &title
}

// Delete removes both files. Each removal is attempted independently; a
// failure (already deleted, for instance) is logged and swallowed, since
// deletion is best-effort cleanup.
func (m *Metadata) Delete(log *logging.JSONLogger) {
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	if err := os.Remove(m.RecoveryFilePath); err != nil && !os.IsNotExist(err) {
		log.Warn("removing recovery file failed",
			logging.Path(m.RecoveryFilePath), logging.Error(err))
	}
	if err := os.Remove(m.metadataPath); err != nil && !os.IsNotExist(err) {
		log.Warn("removing recovery metadata failed",
			logging.Path(m.metadataPath), logging.Error(err))
	}
}

// titleFromPath derives a document title from the path's file stem.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
