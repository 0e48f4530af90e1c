package data

import (
	"github.com/google/uuid"
)

// NewRecordID generates a fixed-length random identifier for a new record.
// Collision probability within a single collection is treated as negligible.
func NewRecordID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Stamp clones the record and writes the identifier field into the copy.
func Stamp(rec Record, id string) Record {
	stamped := rec.Clone()
	stamped[FieldID] = id

	return stamped
}

// Validate checks that a record payload is storable.
// Returns ErrValidation for nil or empty records.
func Validate(rec Record) error {
	if len(rec) == 0 {
		return ErrValidation
	}

	return nil
}
