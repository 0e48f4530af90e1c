package memory

import (
	"context"
	"sync"

	"github.com/mwantia/docstore/data"
	"github.com/tidwall/btree"
)

// MemoryDriver keeps the collection in process memory, ordered by record
// identifier in a B-tree. Intended for tests and ephemeral stores; contents
// are lost when the driver is closed.
type MemoryDriver struct {
	mu sync.RWMutex

	name    string
	records *btree.Map[string, data.Record]
	backup  data.Collection
}

func NewMemoryDriver(name string) *MemoryDriver {
	return &MemoryDriver{
		name:    name,
		records: btree.NewMap[string, data.Record](0),
	}
}

// Name returns the identifier name defined for this driver.
func (*MemoryDriver) Name() string {
	return "memory"
}

// Open is part of the lifecycle behaviour and gets called when opening this driver.
func (md *MemoryDriver) Open(ctx context.Context) error {
	// No initialization needed - driver is ready to use
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this driver.
func (md *MemoryDriver) Close(ctx context.Context) error {
	md.mu.Lock()
	defer md.mu.Unlock()

	md.records.Clear()
	md.backup = nil

	return nil
}

// LoadAll returns a snapshot of the current collection.
func (md *MemoryDriver) LoadAll(ctx context.Context) (data.Collection, error) {
	md.mu.RLock()
	defer md.mu.RUnlock()

	col := make(data.Collection, md.records.Len())
	md.records.Scan(func(id string, rec data.Record) bool {
		col[id] = rec.Clone()
		return true
	})

	return col, nil
}

// SaveAll replaces the stored collection with the given one.
func (md *MemoryDriver) SaveAll(ctx context.Context, col data.Collection) error {
	md.mu.Lock()
	defer md.mu.Unlock()

	md.records.Clear()
	for id, rec := range col {
		md.records.Set(id, rec.Clone())
	}

	return nil
}

// Backup snapshots the current collection, replacing any prior snapshot.
func (md *MemoryDriver) Backup(ctx context.Context) (string, error) {
	md.mu.Lock()
	defer md.mu.Unlock()

	backup := make(data.Collection, md.records.Len())
	md.records.Scan(func(id string, rec data.Record) bool {
		backup[id] = rec.Clone()
		return true
	})
	md.backup = backup

	return "memory://" + md.name + "--backup", nil
}

// Restore returns the backup snapshot.
func (md *MemoryDriver) Restore(ctx context.Context) (data.Collection, error) {
	md.mu.RLock()
	defer md.mu.RUnlock()

	if md.backup == nil {
		return nil, data.ErrBackupMissing
	}

	return md.backup.Clone(), nil
}
