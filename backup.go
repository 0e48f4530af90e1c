package docstore

import (
	"context"
	"time"

	"github.com/mwantia/docstore/data"
	"github.com/robfig/cron/v3"
)

// backupState is the explicit scheduler state. Transitions are guarded by
// backupMu and fail on misuse instead of silently restarting timers.
type backupState int

const (
	backupStopped backupState = iota
	backupRunning
)

// StartBackups transitions the scheduler from Stopped to Running and arms
// the recurring backup timer.
func (s *documentStore) StartBackups() error {
	s.backupMu.Lock()
	if s.backupState == backupRunning {
		s.backupMu.Unlock()
		return data.ErrBackupsRunning
	}

	var schedule cron.Schedule
	if s.opts.BackupSchedule != "" {
		// Expression was validated when the option was applied.
		schedule, _ = cron.ParseStandard(s.opts.BackupSchedule)
	}

	s.backupStop = make(chan struct{})
	s.backupDone = make(chan struct{})
	s.backupState = backupRunning

	go s.runBackups(schedule, s.backupStop, s.backupDone)
	s.backupMu.Unlock()

	s.log.Info("scheduled backups started")
	s.events.Emit(Event{Name: EventBackupsStarted})

	return nil
}

// StopBackups transitions the scheduler from Running to Stopped and waits
// for the timer goroutine to exit.
func (s *documentStore) StopBackups() error {
	s.backupMu.Lock()
	if s.backupState != backupRunning {
		s.backupMu.Unlock()
		return data.ErrBackupsStopped
	}

	close(s.backupStop)
	done := s.backupDone
	s.backupState = backupStopped
	s.backupMu.Unlock()

	<-done

	s.log.Info("scheduled backups stopped")
	s.events.Emit(Event{Name: EventBackupsStopped})

	return nil
}

// runBackups is the timer loop, one goroutine per Running scheduler.
// With a cron schedule each wait targets the next occurrence, otherwise
// the fixed interval applies.
func (s *documentStore) runBackups(schedule cron.Schedule, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		wait := s.opts.BackupInterval
		if schedule != nil {
			wait = time.Until(schedule.Next(time.Now()))
		}

		timer := time.NewTimer(wait)
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
			if _, err := s.backup(context.Background(), true); err != nil {
				s.log.Error("scheduled backup failed: %v", err)
			}
		}
	}
}

// Backup snapshots the primary document to the backup location.
func (s *documentStore) Backup(ctx context.Context) (string, error) {
	return s.backup(ctx, false)
}

func (s *documentStore) backup(ctx context.Context, scheduled bool) (string, error) {
	var path string

	_, err := s.runner.Submit(ctx, "backup", func(ctx context.Context) (any, error) {
		location, err := s.drv.Backup(ctx)
		if err != nil {
			return nil, err
		}

		path = location
		return nil, nil
	})
	if err != nil {
		return "", err
	}

	s.log.Info("backup written to %s (scheduled=%t)", path, scheduled)
	s.events.Emit(Event{Name: EventBackup, Path: path, Scheduled: scheduled})

	return path, nil
}

// Restore overwrites the primary document with the backup snapshot.
func (s *documentStore) Restore(ctx context.Context) error {
	_, err := s.runner.Submit(ctx, "restore", func(ctx context.Context) (any, error) {
		col, err := s.drv.Restore(ctx)
		if err != nil {
			return nil, err
		}

		return nil, s.drv.SaveAll(ctx, col)
	})
	if err != nil {
		return err
	}

	s.log.Info("collection restored from backup")
	s.events.Emit(Event{Name: EventRestore})

	return nil
}
