package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mwantia/docstore/data"
	"github.com/mwantia/docstore/driver/memory"
)

func TestMemory_SaveLoad(t *testing.T) {
	ctx := context.Background()
	drv := memory.NewMemoryDriver("t")

	col := data.Collection{
		"a": {data.FieldID: "a", "k": "v"},
		"b": {data.FieldID: "b", "k": "w"},
	}
	if err := drv.SaveAll(ctx, col); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	loaded, err := drv.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(loaded) != 2 || loaded["a"]["k"] != "v" {
		t.Fatalf("Unexpected collection: %v", loaded)
	}
}

func TestMemory_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	drv := memory.NewMemoryDriver("t")

	if err := drv.SaveAll(ctx, data.Collection{"a": {data.FieldID: "a", "k": "v"}}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	loaded, err := drv.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	loaded["a"]["k"] = "mutated"

	again, err := drv.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if again["a"]["k"] != "v" {
		t.Error("Mutating a loaded snapshot leaked into the driver")
	}
}

func TestMemory_BackupRestore(t *testing.T) {
	ctx := context.Background()
	drv := memory.NewMemoryDriver("t")

	if _, err := drv.Restore(ctx); !errors.Is(err, data.ErrBackupMissing) {
		t.Errorf("Restore without backup expected ErrBackupMissing, got %v", err)
	}

	if err := drv.SaveAll(ctx, data.Collection{"a": {data.FieldID: "a", "v": 1}}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}
	if _, err := drv.Backup(ctx); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	if err := drv.SaveAll(ctx, data.Collection{}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	restored, err := drv.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if len(restored) != 1 || restored["a"] == nil {
		t.Fatalf("Expected snapshot to survive later saves, got %v", restored)
	}
}

func TestMemory_CloseClears(t *testing.T) {
	ctx := context.Background()
	drv := memory.NewMemoryDriver("t")

	if err := drv.SaveAll(ctx, data.Collection{"a": {data.FieldID: "a"}}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}
	if err := drv.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	col, err := drv.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(col) != 0 {
		t.Fatalf("Expected contents to be dropped on Close, got %v", col)
	}
}
