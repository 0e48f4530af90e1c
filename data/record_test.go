package data_test

import (
	"errors"
	"testing"

	"github.com/mwantia/docstore/data"
)

func TestRecord_Stamp(t *testing.T) {
	rec := data.Record{"k": "v"}
	stamped := data.Stamp(rec, "abc")

	if stamped.ID() != "abc" {
		t.Errorf("Expected id 'abc', got %q", stamped.ID())
	}
	if _, ok := rec[data.FieldID]; ok {
		t.Error("Stamp mutated its input")
	}
}

func TestRecord_Clone(t *testing.T) {
	rec := data.Record{"k": "v"}
	clone := rec.Clone()
	clone["k"] = "w"

	if rec["k"] != "v" {
		t.Error("Mutating a clone leaked into the original")
	}

	if data.Record(nil).Clone() != nil {
		t.Error("Cloning a nil record should stay nil")
	}
}

func TestCollection_Keys(t *testing.T) {
	col := data.Collection{
		"c": {data.FieldID: "c"},
		"a": {data.FieldID: "a"},
		"b": {data.FieldID: "b"},
	}

	keys := col.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("Expected ascending order, got %v", keys)
	}
}

func TestValidate(t *testing.T) {
	if err := data.Validate(nil); !errors.Is(err, data.ErrValidation) {
		t.Errorf("Expected ErrValidation for nil, got %v", err)
	}
	if err := data.Validate(data.Record{}); !errors.Is(err, data.ErrValidation) {
		t.Errorf("Expected ErrValidation for empty record, got %v", err)
	}
	if err := data.Validate(data.Record{"k": "v"}); err != nil {
		t.Errorf("Expected valid record to pass, got %v", err)
	}
}

func TestNewRecordID(t *testing.T) {
	a := data.NewRecordID()
	b := data.NewRecordID()

	if a == "" || b == "" {
		t.Fatal("Expected non-empty identifiers")
	}
	if a == b {
		t.Fatal("Expected unique identifiers")
	}
	if len(a) != len(b) {
		t.Fatal("Expected fixed-length identifiers")
	}
}
