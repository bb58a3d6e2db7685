package models

import "fmt"

// ChangeKind says what happened to a row.
type ChangeKind string

const (
	ChangeInserted ChangeKind = "inserted"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
)

// ChangeEvent describes a mutation of one entry. For deletions Entry holds
// the row as it was before it was removed.
type ChangeEvent struct {
	Kind  ChangeKind `json:"kind"`
	Entry Entry      `json:"entry"`
}

// ParseChangeKind accepts both the lower-case kinds and SQL trigger
// operation names (INSERT, UPDATE, DELETE).
func ParseChangeKind(s string) (ChangeKind, error) {
	switch s {
	case "inserted", "INSERT":
		return ChangeInserted, nil
	case "updated", "UPDATE":
		return ChangeUpdated, nil
	case "deleted", "DELETE":
		return ChangeDeleted, nil
	}
	return "", fmt.Errorf("unknown change kind %q", s)
}
