package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mwantia/docstore/data"
	"github.com/mwantia/docstore/driver"
	"github.com/mwantia/docstore/driver/jsonfile"
	"github.com/mwantia/docstore/log"
)

type documentStore struct {
	opts *StoreOptions
	drv  driver.Driver

	runner *serialRunner
	events *notifier
	log    *log.Logger

	backupMu    sync.Mutex
	backupState backupState
	backupStop  chan struct{}
	backupDone  chan struct{}

	closeMu sync.Mutex
	closed  bool
}

// New opens a document store. Without WithDriver the collection is stored
// as a JSON document at <path>/<name>.json. Scheduled backups start
// immediately unless disabled via WithoutBackups.
func New(ctx context.Context, opts ...StoreOption) (DocumentStore, error) {
	options := newDefaultStoreOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	drv := options.Driver
	if drv == nil {
		drv = jsonfile.NewJSONFileDriver(options.Path, options.Name)
	}

	logger := log.NewLogger("docstore/"+options.Name, options.LogLevel, options.LogFile, options.NoTerminalLog)

	if err := drv.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open driver %s: %w", drv.Name(), err)
	}

	store := &documentStore{
		opts:   options,
		drv:    drv,
		events: newNotifier(),
		log:    logger,
	}
	store.runner = newSerialRunner(logger.Named("runner"))

	logger.Debug("store opened with driver %s", drv.Name())

	if options.BackupEnabled {
		if err := store.StartBackups(); err != nil {
			store.runner.Close()
			drv.Close(ctx)
			return nil, err
		}
	}

	return store, nil
}

// Close stops scheduled backups, drains pending jobs and releases the
// underlying driver.
func (s *documentStore) Close(ctx context.Context) error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return data.ErrClosed
	}
	s.closed = true
	s.closeMu.Unlock()

	if err := s.StopBackups(); err != nil && !errors.Is(err, data.ErrBackupsStopped) {
		return err
	}

	s.runner.Close()
	s.log.Debug("store closed")

	return s.drv.Close(ctx)
}

// Subscribe registers a callback invoked after each successful mutation.
func (s *documentStore) Subscribe(fn func(Event)) func() {
	return s.events.Subscribe(fn)
}
