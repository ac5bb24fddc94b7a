package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/pkg/errors"
)

type API interface {
	Login(ctx context.Context, creds models.Credentials) (models.AuthResult, error)
	Signup(ctx context.Context, req models.SignupRequest) (models.AuthResult, error)
}

var ErrMissingCredentials = errors.New("email and password are required")

type Service struct {
	api    API
	tokens *TokenStore
}

func New(api API, tokens *TokenStore) *Service {
	return &Service{api: api, tokens: tokens}
}

func (s *Service) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}
	res, err := s.api.Login(ctx, creds)
	if err != nil {
		slog.Error("login", "email", creds.Email, "error", err.Error())
		return nil, err
	}
	if err := s.tokens.Save(ctx, res); err != nil {
		return nil, errors.Wrap(err, "persist session")
	}
	return &res.User, nil
}

func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}
	res, err := s.api.Signup(ctx, req)
	if err != nil {
		slog.Error("signup", "email", req.Email, "error", err.Error())
		return nil, err
	}
	if err := s.tokens.Save(ctx, res); err != nil {
		return nil, errors.Wrap(err, "persist session")
	}
	return &res.User, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.tokens.User(ctx)
}
