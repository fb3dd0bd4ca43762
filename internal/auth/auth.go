// Package auth persists the client's login state: the bearer token, account
// email, numeric user id, and admin flag. The four fields form one unit —
// they are always written and cleared together, so no authenticated call can
// ever observe a partial set. Two stores are provided: a JSON file for the
// common single-machine case and a Redis hash for multi-instance headless
// deployments.
package auth

import (
	"context"
	"errors"
)

// Credentials is the persisted login state.
type Credentials struct {
	Token   string `json:"token" redis:"token"`
	Email   string `json:"email" redis:"email"`
	UserID  int64  `json:"user_id" redis:"user_id"`
	IsAdmin bool   `json:"is_admin" redis:"is_admin"`
}

// LoggedIn reports whether the credentials carry a token.
func (c Credentials) LoggedIn() bool {
	return c.Token != ""
}

// ErrNoCredentials is returned by Load when nothing is stored.
var ErrNoCredentials = errors.New("auth: no stored credentials")

// Store persists credentials. Save and Clear are atomic with respect to
// Load: a concurrent Load sees either the full previous set or the full new
// one, never a mix.
type Store interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}
