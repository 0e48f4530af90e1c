package data

import "sort"

// FieldID is the reserved identifier field stamped into every stored record.
// Its value always equals the record's key within the collection.
const FieldID = "_id"

// Record is a single stored item: an open-ended mapping of field names to
// values, always carrying the reserved identifier field once stored.
type Record map[string]any

// Collection is the full set of records of one store, keyed by identifier.
type Collection map[string]Record

// Absent marks a field for removal when used as a patch value in an edit.
// Storing Absent itself is not possible; it is resolved during patching.
var Absent = absent{}

type absent struct{}

// ID returns the record identifier, or an empty string if the record has
// not been stamped yet.
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// Clone returns a shallow copy of the record.
// Nested values are shared between the copies.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = v
	}

	return clone
}

// Clone returns a copy of the collection with every record cloned.
func (c Collection) Clone() Collection {
	clone := make(Collection, len(c))
	for id, rec := range c {
		clone[id] = rec.Clone()
	}

	return clone
}

// Keys returns all record identifiers in ascending order.
// Deterministic iteration keeps "first match" stable across runs.
func (c Collection) Keys() []string {
	keys := make([]string, 0, len(c))
	for id := range c {
		keys = append(keys, id)
	}

	sort.Strings(keys)
	return keys
}
