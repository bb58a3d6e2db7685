package sqlstore

import (
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/store"
)

// Dialect covers the SQL differences between backends.
type Dialect interface {
	// Name is the goose dialect name.
	Name() string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder(n int) string
	// ReadExpr is the expression used to select c so that it scans into
	// the Go type the store expects.
	ReadExpr(c store.Column) string
	// TextExpr is c converted to text for substring matching.
	TextExpr(c store.Column) string
	// LikeOp is the case-insensitive LIKE operator.
	LikeOp() string
	// NoLimit is the LIMIT value meaning "all rows", used when only an
	// offset is given.
	NoLimit() string
	// TimeArg converts a timestamp into a bind argument.
	TimeArg(t time.Time) any
	// Classify wraps driver errors around the common sentinels.
	Classify(err error) error
}
