package docstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwantia/docstore"
	"github.com/mwantia/docstore/data"
	"github.com/mwantia/docstore/driver/memory"
)

// TestBackupScheduler_StateMachine verifies the Stopped/Running transitions
// and their misuse errors.
func TestBackupScheduler_StateMachine(t *testing.T) {
	ctx := context.Background()
	store, err := docstore.New(ctx,
		docstore.WithDriver(memory.NewMemoryDriver("t")),
		docstore.WithoutBackups(),
		docstore.WithoutTerminalLog(),
	)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close(ctx)

	if err := store.StopBackups(); !errors.Is(err, data.ErrBackupsStopped) {
		t.Errorf("StopBackups while stopped expected ErrBackupsStopped, got %v", err)
	}

	if err := store.StartBackups(); err != nil {
		t.Fatalf("StartBackups failed: %v", err)
	}
	if err := store.StartBackups(); !errors.Is(err, data.ErrBackupsRunning) {
		t.Errorf("Second StartBackups expected ErrBackupsRunning, got %v", err)
	}

	if err := store.StopBackups(); err != nil {
		t.Fatalf("StopBackups failed: %v", err)
	}
	if err := store.StopBackups(); !errors.Is(err, data.ErrBackupsStopped) {
		t.Errorf("Second StopBackups expected ErrBackupsStopped, got %v", err)
	}
}

// TestBackupScheduler_AutoStart verifies that construction arms the timer
// and that scheduled ticks emit backup events with the scheduled flag.
func TestBackupScheduler_AutoStart(t *testing.T) {
	ctx := context.Background()
	store, err := docstore.New(ctx,
		docstore.WithDriver(memory.NewMemoryDriver("t")),
		docstore.WithBackupInterval(20*time.Millisecond),
		docstore.WithoutTerminalLog(),
	)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close(ctx)

	backups := make(chan docstore.Event, 16)
	cancel := store.Subscribe(func(event docstore.Event) {
		if event.Name == docstore.EventBackup {
			backups <- event
		}
	})
	defer cancel()

	select {
	case event := <-backups:
		if !event.Scheduled {
			t.Error("Expected scheduled flag on timer-driven backup")
		}
		if event.Path == "" {
			t.Error("Expected backup path in event payload")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for a scheduled backup")
	}

	if err := store.StopBackups(); err != nil {
		t.Fatalf("StopBackups failed: %v", err)
	}
}

// TestBackupScheduler_ManualBackup verifies the manual trigger and its
// event payload.
func TestBackupScheduler_ManualBackup(t *testing.T) {
	ctx := context.Background()
	store, err := docstore.New(ctx,
		docstore.WithDriver(memory.NewMemoryDriver("t")),
		docstore.WithoutBackups(),
		docstore.WithoutTerminalLog(),
	)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close(ctx)

	var events []docstore.Event
	cancel := store.Subscribe(func(event docstore.Event) {
		events = append(events, event)
	})
	defer cancel()

	path, err := store.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	if len(events) != 1 || events[0].Name != docstore.EventBackup {
		t.Fatalf("Expected one backup event, got %v", events)
	}
	if events[0].Scheduled {
		t.Error("Manual backup must not carry the scheduled flag")
	}
	if events[0].Path != path {
		t.Errorf("Event path %q does not match returned location %q", events[0].Path, path)
	}
}

// TestBackupScheduler_ScheduleOption verifies cron expression validation.
func TestBackupScheduler_ScheduleOption(t *testing.T) {
	ctx := context.Background()

	if _, err := docstore.New(ctx,
		docstore.WithDriver(memory.NewMemoryDriver("t")),
		docstore.WithBackupSchedule("not a schedule"),
		docstore.WithoutTerminalLog(),
	); err == nil {
		t.Error("Expected error for invalid backup schedule")
	}

	store, err := docstore.New(ctx,
		docstore.WithDriver(memory.NewMemoryDriver("t")),
		docstore.WithBackupSchedule("@every 1h"),
		docstore.WithoutTerminalLog(),
	)
	if err != nil {
		t.Fatalf("Failed to open store with cron schedule: %v", err)
	}
	store.Close(ctx)
}
