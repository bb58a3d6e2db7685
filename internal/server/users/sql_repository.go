package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/dbx"
	"github.com/dmitrijs2005/wellkeeper/internal/store/sqlstore"
	"github.com/google/uuid"
)

// SQLRepository stores users next to the entries, in the same database and
// dialect as the entry store.
type SQLRepository struct {
	db dbx.DBTX
	d  sqlstore.Dialect
}

func NewSQLRepository(db dbx.DBTX, d sqlstore.Dialect) *SQLRepository {
	return &SQLRepository{db: db, d: d}
}

func (r *SQLRepository) Create(ctx context.Context, user *User) (*User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(
		`INSERT INTO users (id, username, password_hash, salt, created_at)
		 VALUES (%s, %s, %s, %s, %s)`,
		r.d.Placeholder(1), r.d.Placeholder(2), r.d.Placeholder(3), r.d.Placeholder(4), r.d.Placeholder(5))

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.Salt, r.d.TimeArg(user.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", r.d.Classify(err))
	}

	return user, nil
}

func (r *SQLRepository) GetUserByLogin(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, password_hash, salt FROM users
		 WHERE username = ` + r.d.Placeholder(1)

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
