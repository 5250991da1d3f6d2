// Package adapter holds the vocabulary shared by every provider adapter:
// element identifiers, property values, graph entities, media/job types,
// and the typed errors each translation layer returns.
package adapter

import (
	"fmt"

	"github.com/google/uuid"
)

// ElementIDKind discriminates the ElementID union.
type ElementIDKind string

const (
	ElementIDString ElementIDKind = "string"
	ElementIDInt64  ElementIDKind = "int64"
	ElementIDUUID   ElementIDKind = "uuid"
)

// ElementID is the uniform vertex/edge identifier: a tagged union of
// string, int64, and UUID. Graph translation layers accept all three;
// providers that key by string parse numerics from String().
type ElementID struct {
	kind ElementIDKind
	s    string
	i    int64
	u    uuid.UUID
}

// StringID builds a string-kinded ElementID.
func StringID(s string) ElementID { return ElementID{kind: ElementIDString, s: s} }

// Int64ID builds an int64-kinded ElementID.
func Int64ID(i int64) ElementID { return ElementID{kind: ElementIDInt64, i: i} }

// UUIDID builds a UUID-kinded ElementID.
func UUIDID(u uuid.UUID) ElementID { return ElementID{kind: ElementIDUUID, u: u} }

// NewUUIDID generates a fresh random UUID-kinded ElementID.
func NewUUIDID() ElementID { return UUIDID(uuid.New()) }

// Kind reports which variant is populated.
func (e ElementID) Kind() ElementIDKind { return e.kind }

// String renders the ID as a string regardless of kind. Backends that key
// documents by string call this to get a stable collection-qualified key.
func (e ElementID) String() string {
	switch e.kind {
	case ElementIDString:
		return e.s
	case ElementIDInt64:
		return fmt.Sprintf("%d", e.i)
	case ElementIDUUID:
		return e.u.String()
	default:
		return ""
	}
}

// AsInt64 returns the underlying int64 and true if the ID is int64-kinded,
// or attempts to parse a string-kinded ID as a base-10 integer.
func (e ElementID) AsInt64() (int64, bool) {
	switch e.kind {
	case ElementIDInt64:
		return e.i, true
	case ElementIDString:
		var v int64
		if _, err := fmt.Sscanf(e.s, "%d", &v); err == nil {
			return v, true
		}
	}
	return 0, false
}

// Equal reports whether two IDs denote the same element, comparing by
// their string rendering so a numeric ID and its string form match.
func (e ElementID) Equal(other ElementID) bool {
	return e.String() == other.String()
}

// JobID is an opaque string issued by a provider; it is never parsed, only
// round-tripped between submit and poll.
type JobID string

// GenerationID is a provider-issued string naming a completed generation,
// required to chain extend/lip-sync calls onto an earlier result.
type GenerationID string
