package cache

import (
	"encoding/json"
	"strings"
)

// Kind is the family a cached value belongs to.
type Kind string

const (
	KindEntries     Kind = "entries"
	KindAllEntries  Kind = "all-entries"
	KindEntry       Kind = "entry"
	KindEntryByDate Kind = "entry-by-date"
	KindSearch      Kind = "search"
	KindStats       Kind = "stats"
)

// Key identifies a cached value. Params carries every remaining
// distinguishing parameter in a deterministic encoding.
type Key struct {
	Kind   Kind
	UserID string
	Params string
}

// NewKey builds a key whose Params is the colon-joined parts.
func NewKey(kind Kind, userID string, parts ...string) Key {
	return Key{Kind: kind, UserID: userID, Params: strings.Join(parts, ":")}
}

// String renders the textual signature, e.g. "entries:u1:2024-01-01:2024-01-31:{...}".
// The user segment is omitted for keys that are not scoped to a user.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(string(k.Kind))
	if k.UserID != "" {
		b.WriteByte(':')
		b.WriteString(k.UserID)
	}
	if k.Params != "" {
		b.WriteByte(':')
		b.WriteString(k.Params)
	}
	return b.String()
}

// Signature encodes v as JSON for use in Params. encoding/json writes
// struct fields in declaration order and map keys sorted, so equal values
// always give equal signatures.
func Signature(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Selector picks keys for invalidation. Empty fields match anything, so the
// zero Selector matches every key. If Key is set, only that exact key matches.
type Selector struct {
	Kinds  []Kind
	UserID string
	Key    *Key
}

func (s Selector) matches(k Key) bool {
	if s.Key != nil {
		return *s.Key == k
	}
	if s.UserID != "" && s.UserID != k.UserID {
		return false
	}
	if len(s.Kinds) == 0 {
		return true
	}
	for _, kind := range s.Kinds {
		if kind == k.Kind {
			return true
		}
	}
	return false
}
