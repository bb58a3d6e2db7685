package users

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/server/auth"
	"github.com/dmitrijs2005/wellkeeper/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteService(t *testing.T) *Service {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "users.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return NewService(NewSQLRepository(s.DB(), s.Dialect()), "secret", time.Hour)
}

func TestService_RegisterThenLogin(t *testing.T) {
	svc := newSQLiteService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, " alice ", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.UserID)

	uid, err := auth.GetUserIDFromToken(reg.AccessToken, []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, uid)

	login, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, login.UserID)
}

func TestService_RegisterDuplicate(t *testing.T) {
	svc := newSQLiteService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	require.ErrorIs(t, err, common.ErrorUniqueViolation)
}

func TestService_RegisterRequiresCredentials(t *testing.T) {
	svc := newSQLiteService(t)

	_, err := svc.Register(context.Background(), "  ", "pw")
	require.ErrorIs(t, err, common.ErrorInvalidArgument)
	_, err = svc.Register(context.Background(), "bob", "")
	require.ErrorIs(t, err, common.ErrorInvalidArgument)
}

func TestService_LoginFailures(t *testing.T) {
	svc := newSQLiteService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = svc.Login(ctx, "nobody", "pw")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

type brokenRepo struct{}

func (brokenRepo) Create(context.Context, *User) (*User, error) { return nil, errors.New("down") }
func (brokenRepo) GetUserByLogin(context.Context, string) (*User, error) {
	return nil, errors.New("down")
}

func TestService_LoginRepositoryError(t *testing.T) {
	svc := NewService(brokenRepo{}, "secret", time.Hour)
	_, err := svc.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, common.ErrorInternal)
}
