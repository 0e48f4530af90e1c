package data

import "errors"

// Standard docstore errors that store and driver implementations should use.
var (
	// Mutation errors
	ErrValidation = errors.New("docstore: record must be a non-empty object")

	// Persistence errors
	ErrCorruptData   = errors.New("docstore: stored document is not valid data")
	ErrBackupMissing = errors.New("docstore: no backup present")

	// Backup scheduler errors
	ErrBackupsRunning = errors.New("docstore: scheduled backups already running")
	ErrBackupsStopped = errors.New("docstore: scheduled backups not running")

	// Lifecycle errors
	ErrClosed = errors.New("docstore: store already closed")
)
