package docstore

import (
	"context"

	"github.com/mwantia/docstore/data"
)

// DocumentStore is a lightweight, file-backed record store for development
// and testing workloads. Every read and write is sequenced through a single
// worker owning the on-disk document, so overlapping operations never tear
// or clobber each other inside one process. It is not designed for
// multi-process access or high-throughput production use.
type DocumentStore interface {
	// Close stops scheduled backups, drains pending jobs and releases the
	// underlying driver. Operations submitted afterwards fail with
	// data.ErrClosed.
	Close(ctx context.Context) error

	// Subscribe registers a callback invoked after each successful mutation
	// and backup lifecycle change. The returned function cancels the
	// subscription.
	Subscribe(fn func(Event)) func()

	// Add validates and stores a new record, generating its identifier.
	// Returns data.ErrValidation for nil or empty records.
	Add(ctx context.Context, rec data.Record) (string, error)

	// AddMany stores multiple records in one write. Every element is
	// validated independently before anything is stored.
	AddMany(ctx context.Context, recs []data.Record) ([]string, error)

	// Get returns the record with the given identifier.
	// A missing identifier reports ok=false, never an error.
	Get(ctx context.Context, id string) (data.Record, bool, error)

	// All returns every record, ordered by identifier.
	All(ctx context.Context) ([]data.Record, error)

	// Object returns the raw collection mapping.
	Object(ctx context.Context) (data.Collection, error)

	// Only returns every record matching all fields of the match object.
	// String comparison is case-insensitive unless Strict() is given.
	Only(ctx context.Context, fields map[string]any, opts ...MatchOption) ([]data.Record, error)

	// Find returns every record satisfying the predicate.
	Find(ctx context.Context, pred Predicate) ([]data.Record, error)

	// First returns the first record satisfying the predicate.
	First(ctx context.Context, pred Predicate) (data.Record, bool, error)

	// Edit applies a patch to the record resolved by the filter: missing
	// fields are set, fields patched with data.Absent are removed, existing
	// fields are overwritten. Reports ok=false if nothing matched.
	Edit(ctx context.Context, filter Filter, patch data.Record) (bool, error)

	// Replace discards the matched record except for its identifier and
	// stores the given value in full. Reports ok=false if nothing matched.
	Replace(ctx context.Context, filter Filter, value data.Record) (bool, error)

	// Delete removes the record resolved by the filter.
	// Reports ok=false if nothing matched.
	Delete(ctx context.Context, filter Filter) (bool, error)

	// Sweep deletes every record matching the filter and returns the count
	// of deleted records, zero when nothing matched.
	Sweep(ctx context.Context, filter Filter) (int, error)

	// Empty replaces the collection with an empty one.
	Empty(ctx context.Context) error

	// Has reports whether the filter resolves to a record.
	Has(ctx context.Context, filter Filter) (bool, error)

	// Ensure returns the identifier of the record resolved by the filter,
	// adding item when nothing matches. Reports created=true when the item
	// was added.
	Ensure(ctx context.Context, filter Filter, item data.Record) (string, bool, error)

	// Upsert edits the record resolved by the filter with the patch, or
	// inserts the patch as a new record when nothing matches. Returns the
	// identifier of the affected record.
	Upsert(ctx context.Context, filter Filter, patch data.Record) (string, error)

	// StartBackups arms the recurring backup timer.
	// Returns data.ErrBackupsRunning if backups are already running.
	StartBackups() error

	// StopBackups disarms the recurring backup timer.
	// Returns data.ErrBackupsStopped if backups are not running.
	StopBackups() error

	// Backup snapshots the primary document to the backup location,
	// overwriting any prior backup. Returns the backup location.
	Backup(ctx context.Context) (string, error)

	// Restore overwrites the primary document with the backup snapshot.
	// Returns data.ErrBackupMissing if no backup exists.
	Restore(ctx context.Context) error
}
