package jsonfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/docstore/data"
	"github.com/mwantia/docstore/driver/jsonfile"
)

func newTestDriver(tst *testing.T) (*jsonfile.JSONFileDriver, string) {
	tst.Helper()

	dir := tst.TempDir()
	drv := jsonfile.NewJSONFileDriver(dir, "t")
	if err := drv.Open(context.Background()); err != nil {
		tst.Fatalf("Open failed: %v", err)
	}

	return drv, dir
}

func TestJSONFile_Layout(t *testing.T) {
	drv, dir := newTestDriver(t)

	if drv.PrimaryPath() != filepath.Join(dir, "t.json") {
		t.Errorf("Unexpected primary path %q", drv.PrimaryPath())
	}
	if drv.BackupPath() != filepath.Join(dir, "t--backup.json") {
		t.Errorf("Unexpected backup path %q", drv.BackupPath())
	}
}

func TestJSONFile_SaveLoad(t *testing.T) {
	ctx := context.Background()
	drv, _ := newTestDriver(t)

	col := data.Collection{
		"a": {data.FieldID: "a", "k": "v"},
	}
	if err := drv.SaveAll(ctx, col); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	loaded, err := drv.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(loaded) != 1 || loaded["a"]["k"] != "v" {
		t.Fatalf("Unexpected collection: %v", loaded)
	}
}

func TestJSONFile_LoadMissingAsEmpty(t *testing.T) {
	drv, _ := newTestDriver(t)

	col, err := drv.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(col) != 0 {
		t.Fatalf("Expected empty collection, got %v", col)
	}
}

func TestJSONFile_CorruptData(t *testing.T) {
	drv, _ := newTestDriver(t)

	if err := os.WriteFile(drv.PrimaryPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt document: %v", err)
	}

	if _, err := drv.LoadAll(context.Background()); !errors.Is(err, data.ErrCorruptData) {
		t.Errorf("Expected ErrCorruptData, got %v", err)
	}
}

func TestJSONFile_BackupRestore(t *testing.T) {
	ctx := context.Background()
	drv, _ := newTestDriver(t)

	if _, err := drv.Restore(ctx); !errors.Is(err, data.ErrBackupMissing) {
		t.Errorf("Restore without backup expected ErrBackupMissing, got %v", err)
	}

	if err := drv.SaveAll(ctx, data.Collection{"a": {data.FieldID: "a", "v": float64(1)}}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	path, err := drv.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if path != drv.BackupPath() {
		t.Errorf("Expected backup at %q, got %q", drv.BackupPath(), path)
	}

	// A later backup overwrites the previous snapshot wholesale.
	if err := drv.SaveAll(ctx, data.Collection{"b": {data.FieldID: "b", "v": float64(2)}}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}
	if _, err := drv.Backup(ctx); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	restored, err := drv.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if len(restored) != 1 || restored["b"] == nil {
		t.Fatalf("Expected latest snapshot only, got %v", restored)
	}
}

func TestJSONFile_BackupBeforeFirstSave(t *testing.T) {
	ctx := context.Background()
	drv, _ := newTestDriver(t)

	if _, err := drv.Backup(ctx); err != nil {
		t.Fatalf("Backup of pristine store failed: %v", err)
	}

	restored, err := drv.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if len(restored) != 0 {
		t.Fatalf("Expected empty snapshot, got %v", restored)
	}
}
