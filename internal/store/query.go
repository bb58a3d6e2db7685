package store

import (
	"fmt"
	"strings"
)

// Column is a whitelisted entry column.
type Column string

const (
	ColumnID         Column = "id"
	ColumnUserID     Column = "user_id"
	ColumnEntryDate  Column = "entry_date"
	ColumnSteps      Column = "steps"
	ColumnSleepHours Column = "sleep_hours"
	ColumnMood       Column = "mood"
	ColumnNotes      Column = "notes"
	ColumnCreatedAt  Column = "created_at"
	ColumnUpdatedAt  Column = "updated_at"
)

// AllColumns is the full row in storage order.
var AllColumns = []Column{
	ColumnID, ColumnUserID, ColumnEntryDate, ColumnSteps, ColumnSleepHours,
	ColumnMood, ColumnNotes, ColumnCreatedAt, ColumnUpdatedAt,
}

func (c Column) Valid() bool {
	for _, k := range AllColumns {
		if k == c {
			return true
		}
	}
	return false
}

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpGte Op = "gte"
	OpLte Op = "lte"
	// OpContains is a case-insensitive substring match on the text form
	// of the column.
	OpContains Op = "contains"
)

func (o Op) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpGte, OpLte, OpContains:
		return true
	}
	return false
}

// Predicate compares one column with a value.
type Predicate struct {
	Column Column `json:"column"`
	Op     Op     `json:"op"`
	Value  any    `json:"value"`
}

func Eq(c Column, v any) Predicate { return Predicate{Column: c, Op: OpEq, Value: v} }
func Neq(c Column, v any) Predicate { return Predicate{Column: c, Op: OpNeq, Value: v} }
func Gte(c Column, v any) Predicate { return Predicate{Column: c, Op: OpGte, Value: v} }
func Lte(c Column, v any) Predicate { return Predicate{Column: c, Op: OpLte, Value: v} }
func Contains(c Column, s string) Predicate { return Predicate{Column: c, Op: OpContains, Value: s} }

// Order sorts by one column.
type Order struct {
	Column Column `json:"column"`
	Desc   bool   `json:"desc"`
}

// Query selects entries. Where predicates are AND-ed; Any predicates form
// one OR group that is AND-ed with the rest. Columns restricts the
// projection (nil means all). Limit 0 means unlimited.
type Query struct {
	Columns []Column    `json:"columns,omitempty"`
	Where   []Predicate `json:"where,omitempty"`
	Any     []Predicate `json:"any,omitempty"`
	Order   []Order     `json:"order,omitempty"`
	Limit   int         `json:"limit,omitempty"`
	Offset  int         `json:"offset,omitempty"`
}

// Validate rejects unknown columns and operators and negative paging.
func (q Query) Validate() error {
	for _, c := range q.Columns {
		if !c.Valid() {
			return fmt.Errorf("unknown column %q", c)
		}
	}
	for _, p := range append(append([]Predicate{}, q.Where...), q.Any...) {
		if !p.Column.Valid() {
			return fmt.Errorf("unknown column %q", p.Column)
		}
		if !p.Op.Valid() {
			return fmt.Errorf("unknown operator %q", p.Op)
		}
		if p.Op == OpContains {
			if _, ok := p.Value.(string); !ok {
				return fmt.Errorf("contains on %s needs a string, got %T", p.Column, p.Value)
			}
		}
	}
	for _, o := range q.Order {
		if !o.Column.Valid() {
			return fmt.Errorf("unknown order column %q", o.Column)
		}
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("negative limit or offset")
	}
	return nil
}

// UserID returns the value of the first user_id equality predicate.
func (q Query) UserID() (string, bool) {
	for _, p := range q.Where {
		if p.Column == ColumnUserID && p.Op == OpEq {
			s, ok := p.Value.(string)
			return s, ok
		}
	}
	return "", false
}

// ScopedTo returns a copy of q with every user_id predicate replaced by a
// single equality on userID.
func (q Query) ScopedTo(userID string) Query {
	where := make([]Predicate, 0, len(q.Where)+1)
	where = append(where, Eq(ColumnUserID, userID))
	for _, p := range q.Where {
		if p.Column != ColumnUserID {
			where = append(where, p)
		}
	}
	anyOf := make([]Predicate, 0, len(q.Any))
	for _, p := range q.Any {
		if p.Column != ColumnUserID {
			anyOf = append(anyOf, p)
		}
	}
	q.Where = where
	q.Any = anyOf
	return q
}

// EscapeLike escapes LIKE wildcards in s using '\' as the escape character.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
