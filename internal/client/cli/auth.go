package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, string, error) {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer wipe(password)
	return userName, string(password), nil
}

// Register creates an account and starts a session for it.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}
	if _, err := a.session.Register(ctx, userName, password); err != nil {
		if errors.Is(err, common.ErrorUniqueViolation) {
			return fmt.Errorf("user %q already exists", userName)
		}
		return err
	}
	a.startSession(userName)
	a.printf("Registered and logged in as %s\n", userName)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}
	if _, err := a.session.Login(ctx, userName, password); err != nil {
		return err
	}
	a.startSession(userName)
	a.printf("Logged in as %s\n", userName)
	return nil
}

// Logout stops any watch, forgets the session and drops the user's cache.
func (a *App) Logout(ctx context.Context) error {
	_ = a.Unwatch(ctx)
	if uid := a.session.UserID(); uid != "" {
		a.data.ClearUserCache(uid)
	}
	a.session.Logout()
	a.list.Replace(nil)

	a.mu.Lock()
	a.userName = ""
	a.mu.Unlock()

	a.printf("Logged out\n")
	return nil
}

func (a *App) startSession(userName string) {
	a.mu.Lock()
	a.userName = userName
	a.page = 1
	a.mu.Unlock()
	a.list.Replace(nil)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
