package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mwantia/docstore/data"
)

// JSONFileDriver stores the collection as a single JSON document on local
// disk at <path>/<name>.json, with the backup snapshot written wholesale to
// <path>/<name>--backup.json. Writes go through a temp file followed by a
// rename so a crash mid-write never leaves a torn primary document.
type JSONFileDriver struct {
	mu   sync.Mutex
	path string
	name string
}

// NewJSONFileDriver creates a driver rooted at the given directory.
// The directory is created on Open if it does not exist.
func NewJSONFileDriver(path, name string) *JSONFileDriver {
	return &JSONFileDriver{
		path: filepath.Clean(path),
		name: name,
	}
}

// Name returns the identifier name defined for this driver.
func (*JSONFileDriver) Name() string {
	return "jsonfile"
}

// PrimaryPath returns the location of the primary document.
func (jd *JSONFileDriver) PrimaryPath() string {
	return filepath.Join(jd.path, jd.name+".json")
}

// BackupPath returns the location of the backup document.
func (jd *JSONFileDriver) BackupPath() string {
	return filepath.Join(jd.path, jd.name+"--backup.json")
}

// Open ensures the storage directory exists.
func (jd *JSONFileDriver) Open(ctx context.Context) error {
	jd.mu.Lock()
	defer jd.mu.Unlock()

	if err := os.MkdirAll(jd.path, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	return nil
}

// Close releases driver resources. The jsonfile driver holds none.
func (jd *JSONFileDriver) Close(ctx context.Context) error {
	return nil
}

// LoadAll reads and parses the primary document.
func (jd *JSONFileDriver) LoadAll(ctx context.Context) (data.Collection, error) {
	jd.mu.Lock()
	defer jd.mu.Unlock()

	return jd.readDocument(jd.PrimaryPath(), true)
}

// SaveAll serializes the collection and overwrites the primary document.
func (jd *JSONFileDriver) SaveAll(ctx context.Context, col data.Collection) error {
	jd.mu.Lock()
	defer jd.mu.Unlock()

	return jd.writeDocument(jd.PrimaryPath(), col)
}

// Backup copies the primary document to the backup location.
func (jd *JSONFileDriver) Backup(ctx context.Context) (string, error) {
	jd.mu.Lock()
	defer jd.mu.Unlock()

	buffer, err := os.ReadFile(jd.PrimaryPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Nothing persisted yet, snapshot an empty collection.
			buffer = []byte("{}")
		} else {
			return "", fmt.Errorf("failed to read primary document: %w", err)
		}
	}

	backupPath := jd.BackupPath()
	if err := jd.writeBytes(backupPath, buffer); err != nil {
		return "", err
	}

	return backupPath, nil
}

// Restore reads the backup document.
func (jd *JSONFileDriver) Restore(ctx context.Context) (data.Collection, error) {
	jd.mu.Lock()
	defer jd.mu.Unlock()

	if _, err := os.Stat(jd.BackupPath()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, data.ErrBackupMissing
		}
		return nil, err
	}

	return jd.readDocument(jd.BackupPath(), false)
}

func (jd *JSONFileDriver) readDocument(path string, missingAsEmpty bool) (data.Collection, error) {
	buffer, err := os.ReadFile(path)
	if err != nil {
		if missingAsEmpty && errors.Is(err, fs.ErrNotExist) {
			return data.Collection{}, nil
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	col := data.Collection{}
	if len(buffer) == 0 {
		return col, nil
	}

	if err := json.Unmarshal(buffer, &col); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", data.ErrCorruptData, path, err)
	}

	return col, nil
}

func (jd *JSONFileDriver) writeDocument(path string, col data.Collection) error {
	buffer, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("failed to serialize collection: %w", err)
	}

	return jd.writeBytes(path, buffer)
}

// writeBytes writes to a temp file in the same directory and renames it
// over the target, keeping the swap atomic on POSIX filesystems.
func (jd *JSONFileDriver) writeBytes(path string, buffer []byte) error {
	tmp, err := os.CreateTemp(jd.path, jd.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}

	if _, err := tmp.Write(buffer); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write document: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp document: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to swap document: %w", err)
	}

	return nil
}
