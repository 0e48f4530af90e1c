package docstore

import (
	"reflect"
	"strings"

	"github.com/mwantia/docstore/data"
)

// Predicate decides whether a record matches. It is invoked once per record
// during resolution.
type Predicate func(rec data.Record) bool

type filterKind int

const (
	filterByID filterKind = iota
	filterMatch
	filterWhere
)

// Filter locates one or more records: by identifier, by attribute match or
// by predicate. Filters are resolved against a collection snapshot and
// never stored.
type Filter struct {
	kind   filterKind
	id     string
	fields map[string]any
	pred   Predicate

	strict    bool
	strictSet bool
}

// ByID filters by exact record identifier.
func ByID(id string) Filter {
	return Filter{kind: filterByID, id: id}
}

// Match filters by attribute match: a record matches if it carries every
// field of the match object with an equal value. String comparison is
// case-insensitive unless Strict() is given or the store defaults to
// strict matching.
func Match(fields map[string]any, opts ...MatchOption) Filter {
	f := Filter{kind: filterMatch, fields: fields}
	for _, opt := range opts {
		opt(&f)
	}

	return f
}

// Where filters by predicate.
func Where(pred Predicate) Filter {
	return Filter{kind: filterWhere, pred: pred}
}

type MatchOption func(*Filter)

// Strict enforces exact string comparison for this match.
func Strict() MatchOption {
	return func(f *Filter) {
		f.strict = true
		f.strictSet = true
	}
}

// resolveOne returns the identifier of the first record satisfying the
// filter, scanning in ascending identifier order. Reports ok=false when
// nothing matches; a miss is never an error.
func (f Filter) resolveOne(col data.Collection, strictDefault bool) (string, bool) {
	switch f.kind {
	case filterByID:
		_, ok := col[f.id]
		return f.id, ok

	case filterMatch:
		strict := f.strictness(strictDefault)
		for _, id := range col.Keys() {
			if matchRecord(col[id], f.fields, strict) {
				return id, true
			}
		}
		return "", false

	case filterWhere:
		for _, id := range col.Keys() {
			if f.pred != nil && f.pred(col[id]) {
				return id, true
			}
		}
		return "", false
	}

	return "", false
}

// resolveAll returns the identifiers of every record satisfying the filter,
// in ascending identifier order. An identifier filter yields at most one.
func (f Filter) resolveAll(col data.Collection, strictDefault bool) []string {
	switch f.kind {
	case filterByID:
		if _, ok := col[f.id]; ok {
			return []string{f.id}
		}
		return nil

	case filterMatch:
		strict := f.strictness(strictDefault)
		var ids []string
		for _, id := range col.Keys() {
			if matchRecord(col[id], f.fields, strict) {
				ids = append(ids, id)
			}
		}
		return ids

	case filterWhere:
		var ids []string
		for _, id := range col.Keys() {
			if f.pred != nil && f.pred(col[id]) {
				ids = append(ids, id)
			}
		}
		return ids
	}

	return nil
}

func (f Filter) strictness(strictDefault bool) bool {
	if f.strictSet {
		return f.strict
	}

	return strictDefault
}

// matchRecord reports whether the record carries every field of the match
// object with an equal value. The first mismatch wins.
func matchRecord(rec data.Record, fields map[string]any, strict bool) bool {
	for key, want := range fields {
		got, ok := rec[key]
		if !ok {
			return false
		}

		if !valuesEqual(got, want, strict) {
			return false
		}
	}

	return true
}

func valuesEqual(got, want any, strict bool) bool {
	if !strict {
		gs, gok := got.(string)
		ws, wok := want.(string)
		if gok && wok {
			return strings.EqualFold(gs, ws)
		}

		// Documents round-trip through JSON, which widens numbers to
		// float64. Default mode compares numerics by value.
		gn, gok := asFloat(got)
		wn, wok := asFloat(want)
		if gok && wok {
			return gn == wn
		}
	}

	// DeepEqual keeps nested values from JSON documents comparable.
	return reflect.DeepEqual(got, want)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}

	return 0, false
}
