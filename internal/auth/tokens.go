package auth

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Jaysins/ohship-tenant-sub000/internal/cache"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/pkg/errors"
)

const (
	KeyAuthToken    = "authToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// TokenStore persists the signed-in session next to the theme cache.
type TokenStore struct {
	store cache.Store
}

func NewTokenStore(s cache.Store) *TokenStore {
	return &TokenStore{store: s}
}

func (t *TokenStore) Token(ctx context.Context) (string, bool) {
	b, ok, err := t.store.Get(ctx, KeyAuthToken)
	if err != nil {
		slog.Warn("read auth token", "error", err.Error())
		return "", false
	}
	if !ok || len(b) == 0 {
		return "", false
	}
	return string(b), true
}

func (t *TokenStore) User(ctx context.Context) (*models.User, error) {
	b, ok, err := t.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, errors.Wrap(err, "decode user")
	}
	return &u, nil
}

func (t *TokenStore) Save(ctx context.Context, res models.AuthResult) error {
	if err := t.store.Set(ctx, KeyAuthToken, []byte(res.Session.AccessToken)); err != nil {
		return err
	}
	if res.Session.RefreshToken != "" {
		if err := t.store.Set(ctx, KeyRefreshToken, []byte(res.Session.RefreshToken)); err != nil {
			return err
		}
	}
	b, err := json.Marshal(res.User)
	if err != nil {
		return errors.Wrap(err, "encode user")
	}
	return t.store.Set(ctx, KeyUser, b)
}

// Clear removes every auth key; it keeps going on individual failures.
func (t *TokenStore) Clear(ctx context.Context) error {
	var firstErr error
	for _, k := range []string{KeyAuthToken, KeyRefreshToken, KeyUser} {
		if err := t.store.Remove(ctx, k); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
