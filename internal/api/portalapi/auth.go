package portalapi

import (
	"context"
	"net/http"

	"github.com/Jaysins/ohship-tenant-sub000/internal/auth"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/pkg/errors"
)

type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) (*models.User, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
}

type userResponse struct {
	User *models.User `json:"user"`
}

func (a *PortalAPI) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.auth.Login(r.Context(), creds)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

func (a *PortalAPI) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.auth.Signup(r.Context(), req)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{User: u})
}

func (a *PortalAPI) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.auth.Logout(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "clear session").Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *PortalAPI) currentUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.auth.CurrentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if u == nil {
		writeUnauthorized(w, "not signed in", loginRedirect)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrMissingCredentials) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeRemoteError(w, err)
}
