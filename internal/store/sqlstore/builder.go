package sqlstore

import (
	"math"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/wellkeeper/internal/store"
)

const table = "wellness_entries"

type builder struct {
	d    Dialect
	sb   strings.Builder
	args []any
}

func newBuilder(d Dialect) *builder {
	return &builder{d: d}
}

func (b *builder) write(s ...string) {
	for _, p := range s {
		b.sb.WriteString(p)
	}
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

func (b *builder) String() string { return b.sb.String() }

func (b *builder) columns(cols []store.Column) {
	if len(cols) == 0 {
		cols = store.AllColumns
	}
	for i, c := range cols {
		if i > 0 {
			b.write(", ")
		}
		b.write(b.d.ReadExpr(c))
	}
}

func (b *builder) predicate(p store.Predicate) {
	if p.Op == store.OpContains {
		s, _ := p.Value.(string)
		b.write(b.d.TextExpr(p.Column), " ", b.d.LikeOp(), " ", b.bind("%"+store.EscapeLike(s)+"%"), ` ESCAPE '\'`)
		return
	}

	var op string
	switch p.Op {
	case store.OpEq:
		op = "="
	case store.OpNeq:
		op = "<>"
	case store.OpGte:
		op = ">="
	case store.OpLte:
		op = "<="
	}
	b.write(string(p.Column), " ", op, " ", b.bind(normalizeValue(p.Column, p.Value)))
}

func (b *builder) where(q store.Query) {
	n := 0
	for _, p := range q.Where {
		if n == 0 {
			b.write(" WHERE ")
		} else {
			b.write(" AND ")
		}
		b.predicate(p)
		n++
	}
	if len(q.Any) == 0 {
		return
	}
	if n == 0 {
		b.write(" WHERE (")
	} else {
		b.write(" AND (")
	}
	for i, p := range q.Any {
		if i > 0 {
			b.write(" OR ")
		}
		b.predicate(p)
	}
	b.write(")")
}

func (b *builder) orderAndPage(q store.Query) {
	if len(q.Order) > 0 {
		b.write(" ORDER BY ")
		byID := false
		for i, o := range q.Order {
			if i > 0 {
				b.write(", ")
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			b.write(string(o.Column), " ", dir)
			byID = byID || o.Column == store.ColumnID
		}
		// Rows that tie on the requested order keep a stable position
		// across pages.
		if !byID {
			b.write(", id ASC")
		}
	}

	switch {
	case q.Limit > 0:
		b.write(" LIMIT ", b.bind(q.Limit))
	case q.Offset > 0:
		b.write(" LIMIT ", b.d.NoLimit())
	}
	if q.Offset > 0 {
		b.write(" OFFSET ", b.bind(q.Offset))
	}
}

func buildSelect(d Dialect, q store.Query) (string, []any) {
	b := newBuilder(d)
	b.write("SELECT ")
	b.columns(q.Columns)
	b.write(" FROM ", table)
	b.where(q)
	b.orderAndPage(q)
	return b.String(), b.args
}

func buildCount(d Dialect, q store.Query) (string, []any) {
	b := newBuilder(d)
	b.write("SELECT COUNT(*) FROM ", table)
	b.where(q)
	return b.String(), b.args
}

// normalizeValue coerces predicate values that may have travelled through
// JSON (where every number is a float64) back to the column's type.
func normalizeValue(c store.Column, v any) any {
	switch c {
	case store.ColumnSteps:
		switch n := v.(type) {
		case int:
			return int64(n)
		case int32:
			return int64(n)
		case float64:
			if n == math.Trunc(n) {
				return int64(n)
			}
		case float32:
			if float64(n) == math.Trunc(float64(n)) {
				return int64(n)
			}
		}
	case store.ColumnSleepHours:
		switch n := v.(type) {
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case float32:
			return float64(n)
		}
	default:
		// Named string types such as models.Mood go to the driver as plain strings.
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
			return rv.String()
		}
	}
	return v
}
