package docstore

import (
	"sync"

	"github.com/mwantia/docstore/data"
)

// EventName identifies a store notification.
type EventName string

const (
	EventAdded          EventName = "added"
	EventEdited         EventName = "edited"
	EventReplaced       EventName = "replaced"
	EventDeleted        EventName = "deleted"
	EventEmptied        EventName = "emptied"
	EventBackupsStarted EventName = "backupsStarted"
	EventBackupsStopped EventName = "backupsStopped"
	EventBackup         EventName = "backup"
	EventRestore        EventName = "restore"
)

// Event is emitted after each successful mutation and backup lifecycle
// change. Only the fields relevant to the event name are set.
type Event struct {
	Name EventName

	// Records carries the stored record(s) for EventAdded.
	Records []data.Record
	// Old and New carry before/after payloads for EventEdited and
	// EventReplaced; EventDeleted sets Old only.
	Old data.Record
	New data.Record

	// Path and Scheduled describe EventBackup.
	Path      string
	Scheduled bool
}

// notifier is an instance-scoped callback registry. Callbacks run
// synchronously on the goroutine completing the operation.
type notifier struct {
	mu   sync.RWMutex
	subs map[int]func(Event)
	next int
}

func newNotifier() *notifier {
	return &notifier{
		subs: make(map[int]func(Event)),
	}
}

func (n *notifier) Subscribe(fn func(Event)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		delete(n.subs, id)
	}
}

func (n *notifier) Emit(event Event) {
	n.mu.RLock()
	subs := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}
