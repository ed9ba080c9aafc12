package rnotefile

import (
	"fmt"
	"os"
	"path/filepath"
)

const filePermissions = 0644

// WriteFileAtomic writes data to path with the atomic-replace discipline:
// write to a temporary file in the same directory, flush it to disk, then
// rename it over the destination. A crash or concurrent read mid-save sees
// either the old complete file or the new complete file, never a
// half-written one.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temporary file into place: %w", err)
	}
	return nil
}

// SaveToPath serializes the container and atomically replaces path with it.
func (f *RnoteFile) SaveToPath(path string) error {
	data, err := f.SaveAsBytes()
	if err != nil {
		return err
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return stageErr(StageWriteFile, err)
	}
	return nil
}

// LoadFromPath reads and parses the container at path.
func LoadFromPath(path string) (*RnoteFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return LoadFromBytes(data)
}
