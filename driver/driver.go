package driver

import (
	"context"

	"github.com/mwantia/docstore/data"
)

// Driver persists one collection as a whole document plus at most one
// backup snapshot. There is no partial read or append; every save rewrites
// the full document and every backup overwrites the previous one.
type Driver interface {
	// Name returns the identifier name defined for this driver.
	Name() string
	// Open is part of the lifecycle behaviour and gets called when opening this driver.
	Open(ctx context.Context) error
	// Close is part of the lifecycle behaviour and gets called when closing this driver.
	Close(ctx context.Context) error

	// LoadAll reads and parses the primary document.
	// A missing document loads as an empty collection.
	// Returns data.ErrCorruptData if the document cannot be parsed.
	LoadAll(ctx context.Context) (data.Collection, error)

	// SaveAll serializes the collection and overwrites the primary document.
	// Disk failures propagate to the caller and are never retried.
	SaveAll(ctx context.Context, col data.Collection) error

	// Backup copies the primary document to the backup location,
	// overwriting any prior backup. Returns the backup location.
	Backup(ctx context.Context) (string, error)

	// Restore reads the backup document.
	// Returns data.ErrBackupMissing if no backup exists.
	Restore(ctx context.Context) (data.Collection, error)
}
