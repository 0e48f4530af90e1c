package docstore

import (
	"context"

	"github.com/mwantia/docstore/data"
)

// Add validates and stores a new record, generating its identifier.
func (s *documentStore) Add(ctx context.Context, rec data.Record) (string, error) {
	ids, err := s.AddMany(ctx, []data.Record{rec})
	if err != nil {
		return "", err
	}

	return ids[0], nil
}

// AddMany stores multiple records in one write. Every element is validated
// independently before anything is stored.
func (s *documentStore) AddMany(ctx context.Context, recs []data.Record) ([]string, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	for _, rec := range recs {
		if err := data.Validate(rec); err != nil {
			return nil, err
		}
	}

	var ids []string
	var stamped []data.Record

	_, err := s.runner.Submit(ctx, "add", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		for _, rec := range recs {
			id := data.NewRecordID()
			stampedRec := data.Stamp(rec, id)

			col[id] = stampedRec
			ids = append(ids, id)
			stamped = append(stamped, stampedRec)
		}

		return nil, s.drv.SaveAll(ctx, col)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("added %d record(s)", len(ids))
	s.events.Emit(Event{Name: EventAdded, Records: stamped})

	return ids, nil
}

// Get returns the record with the given identifier.
func (s *documentStore) Get(ctx context.Context, id string) (data.Record, bool, error) {
	var rec data.Record
	var ok bool

	_, err := s.runner.Submit(ctx, "get", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		rec, ok = col[id]
		return nil, nil
	})
	if err != nil {
		return nil, false, err
	}

	return rec, ok, nil
}

// All returns every record, ordered by identifier.
func (s *documentStore) All(ctx context.Context) ([]data.Record, error) {
	var recs []data.Record

	_, err := s.runner.Submit(ctx, "all", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		recs = make([]data.Record, 0, len(col))
		for _, id := range col.Keys() {
			recs = append(recs, col[id])
		}

		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return recs, nil
}

// Object returns the raw collection mapping.
func (s *documentStore) Object(ctx context.Context) (data.Collection, error) {
	var col data.Collection

	_, err := s.runner.Submit(ctx, "object", func(ctx context.Context) (any, error) {
		loaded, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		col = loaded
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return col, nil
}

// Only returns every record matching all fields of the match object.
func (s *documentStore) Only(ctx context.Context, fields map[string]any, opts ...MatchOption) ([]data.Record, error) {
	return s.selectAll(ctx, "only", Match(fields, opts...))
}

// Find returns every record satisfying the predicate.
func (s *documentStore) Find(ctx context.Context, pred Predicate) ([]data.Record, error) {
	return s.selectAll(ctx, "find", Where(pred))
}

// First returns the first record satisfying the predicate.
func (s *documentStore) First(ctx context.Context, pred Predicate) (data.Record, bool, error) {
	var rec data.Record
	var ok bool

	_, err := s.runner.Submit(ctx, "first", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		if id, found := Where(pred).resolveOne(col, s.opts.StrictMatch); found {
			rec, ok = col[id], true
		}

		return nil, nil
	})
	if err != nil {
		return nil, false, err
	}

	return rec, ok, nil
}

func (s *documentStore) selectAll(ctx context.Context, name string, filter Filter) ([]data.Record, error) {
	recs := []data.Record{}

	_, err := s.runner.Submit(ctx, name, func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		for _, id := range filter.resolveAll(col, s.opts.StrictMatch) {
			recs = append(recs, col[id])
		}

		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return recs, nil
}

// Edit applies a patch to the record resolved by the filter.
func (s *documentStore) Edit(ctx context.Context, filter Filter, patch data.Record) (bool, error) {
	var old, updated data.Record
	var ok bool

	_, err := s.runner.Submit(ctx, "edit", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		id, found := filter.resolveOne(col, s.opts.StrictMatch)
		if !found {
			return nil, nil
		}

		old = col[id].Clone()
		updated = applyPatch(col[id], patch)
		col[id] = updated
		ok = true

		return nil, s.drv.SaveAll(ctx, col)
	})
	if err != nil || !ok {
		return false, err
	}

	s.log.Debug("edited record %s", updated.ID())
	s.events.Emit(Event{Name: EventEdited, Old: old, New: updated})

	return true, nil
}

// applyPatch returns a copy of the record with the patch applied: fields
// patched with data.Absent are removed, everything else is set. The
// identifier field is never patched.
func applyPatch(rec, patch data.Record) data.Record {
	updated := rec.Clone()
	for key, value := range patch {
		if key == data.FieldID {
			continue
		}

		if value == data.Absent {
			delete(updated, key)
			continue
		}

		updated[key] = value
	}

	return updated
}

// Replace discards the matched record except for its identifier and stores
// the given value in full.
func (s *documentStore) Replace(ctx context.Context, filter Filter, value data.Record) (bool, error) {
	var old, updated data.Record
	var ok bool

	_, err := s.runner.Submit(ctx, "replace", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		id, found := filter.resolveOne(col, s.opts.StrictMatch)
		if !found {
			return nil, nil
		}

		old = col[id]
		updated = data.Stamp(value, id)
		col[id] = updated
		ok = true

		return nil, s.drv.SaveAll(ctx, col)
	})
	if err != nil || !ok {
		return false, err
	}

	s.log.Debug("replaced record %s", updated.ID())
	s.events.Emit(Event{Name: EventReplaced, Old: old, New: updated})

	return true, nil
}

// Delete removes the record resolved by the filter.
func (s *documentStore) Delete(ctx context.Context, filter Filter) (bool, error) {
	var old data.Record
	var ok bool

	_, err := s.runner.Submit(ctx, "delete", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		id, found := filter.resolveOne(col, s.opts.StrictMatch)
		if !found {
			return nil, nil
		}

		old = col[id]
		delete(col, id)
		ok = true

		return nil, s.drv.SaveAll(ctx, col)
	})
	if err != nil || !ok {
		return false, err
	}

	s.log.Debug("deleted record %s", old.ID())
	s.events.Emit(Event{Name: EventDeleted, Old: old})

	return true, nil
}

// Sweep deletes every record matching the filter and returns the count of
// deleted records.
func (s *documentStore) Sweep(ctx context.Context, filter Filter) (int, error) {
	var deleted []data.Record

	_, err := s.runner.Submit(ctx, "sweep", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		ids := filter.resolveAll(col, s.opts.StrictMatch)
		if len(ids) == 0 {
			return nil, nil
		}

		for _, id := range ids {
			deleted = append(deleted, col[id])
			delete(col, id)
		}

		return nil, s.drv.SaveAll(ctx, col)
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug("swept %d record(s)", len(deleted))
	for _, old := range deleted {
		s.events.Emit(Event{Name: EventDeleted, Old: old})
	}

	return len(deleted), nil
}

// Empty replaces the collection with an empty one.
func (s *documentStore) Empty(ctx context.Context) error {
	_, err := s.runner.Submit(ctx, "empty", func(ctx context.Context) (any, error) {
		return nil, s.drv.SaveAll(ctx, data.Collection{})
	})
	if err != nil {
		return err
	}

	s.log.Debug("emptied collection")
	s.events.Emit(Event{Name: EventEmptied})

	return nil
}

// Has reports whether the filter resolves to a record.
func (s *documentStore) Has(ctx context.Context, filter Filter) (bool, error) {
	var ok bool

	_, err := s.runner.Submit(ctx, "has", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		_, ok = filter.resolveOne(col, s.opts.StrictMatch)
		return nil, nil
	})
	if err != nil {
		return false, err
	}

	return ok, nil
}

// Ensure returns the identifier of the record resolved by the filter,
// adding item when nothing matches.
func (s *documentStore) Ensure(ctx context.Context, filter Filter, item data.Record) (string, bool, error) {
	var id string
	var created bool
	var stamped data.Record

	_, err := s.runner.Submit(ctx, "ensure", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		if existing, found := filter.resolveOne(col, s.opts.StrictMatch); found {
			id = existing
			return nil, nil
		}

		if err := data.Validate(item); err != nil {
			return nil, err
		}

		id = insertID(filter)
		stamped = data.Stamp(item, id)
		col[id] = stamped
		created = true

		return nil, s.drv.SaveAll(ctx, col)
	})
	if err != nil {
		return "", false, err
	}

	if created {
		s.log.Debug("ensured record %s", id)
		s.events.Emit(Event{Name: EventAdded, Records: []data.Record{stamped}})
	}

	return id, created, nil
}

// Upsert edits the record resolved by the filter with the patch, or inserts
// the patch as a new record when nothing matches.
func (s *documentStore) Upsert(ctx context.Context, filter Filter, patch data.Record) (string, error) {
	var id string
	var created bool
	var old, updated data.Record

	_, err := s.runner.Submit(ctx, "upsert", func(ctx context.Context) (any, error) {
		col, err := s.drv.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		if existing, found := filter.resolveOne(col, s.opts.StrictMatch); found {
			id = existing
			old = col[id].Clone()
			updated = applyPatch(col[id], patch)
			col[id] = updated

			return nil, s.drv.SaveAll(ctx, col)
		}

		if err := data.Validate(patch); err != nil {
			return nil, err
		}

		id = insertID(filter)
		// Absent markers describe removals, which have no meaning on insert.
		updated = applyPatch(data.Record{}, patch)
		updated[data.FieldID] = id
		col[id] = updated
		created = true

		return nil, s.drv.SaveAll(ctx, col)
	})
	if err != nil {
		return "", err
	}

	if created {
		s.log.Debug("upserted new record %s", id)
		s.events.Emit(Event{Name: EventAdded, Records: []data.Record{updated}})
	} else {
		s.log.Debug("upserted existing record %s", id)
		s.events.Emit(Event{Name: EventEdited, Old: old, New: updated})
	}

	return id, nil
}

// insertID picks the identifier for a record inserted through Ensure or
// Upsert: an identifier filter seeds the new record's id so repeated calls
// converge on one record, anything else generates a fresh one.
func insertID(filter Filter) string {
	if filter.kind == filterByID && filter.id != "" {
		return filter.id
	}

	return data.NewRecordID()
}
