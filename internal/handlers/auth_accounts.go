package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/platform/auth"
	"github.com/afripicx/nomads/internal/platform/httpx"
	"github.com/afripicx/nomads/internal/services"
)

// AuthHandlers exposes account registration, login, and logout.
type AuthHandlers struct {
	authn *auth.Authenticator
	users services.UserService
}

const maxAuthBodySize = 16 * 1024

// NewAuthHandlers constructs handlers for the account endpoints.
func NewAuthHandlers(authn *auth.Authenticator, users services.UserService) *AuthHandlers {
	return &AuthHandlers{
		authn: authn,
		users: users,
	}
}

// Routes wires the account endpoints onto the provided router. Logout is the
// only one that requires a live session.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	if h.authn != nil {
		r.With(h.authn.RequireAuth()).Post("/logout", h.logout)
	} else {
		r.Post("/logout", h.logout)
	}
}

type registerRequest struct {
	Name     string                  `json:"name"`
	Email    string                  `json:"email"`
	Password string                  `json:"password"`
	Phone    string                  `json:"phone"`
	Role     string                  `json:"role"`
	Supplier *domain.SupplierProfile `json:"supplier"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("user_service_unavailable", "user service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req registerRequest
	if !decodeJSONBody(w, r, maxAuthBodySize, &req) {
		return
	}

	session, err := h.users.Register(ctx, services.RegisterCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     domain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		Supplier: req.Supplier,
	})
	if err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, session)
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("user_service_unavailable", "user service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req loginRequest
	if !decodeJSONBody(w, r, maxAuthBodySize, &req) {
		return
	}

	session, err := h.users.Login(ctx, services.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, session)
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("user_service_unavailable", "user service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	if err := h.users.Logout(ctx, services.LogoutCommand{
		UserID:  identity.UID,
		TokenID: identity.TokenID,
	}); err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *AuthHandlers) writeUserError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrEmailTaken):
		httpx.WriteError(ctx, w, httpx.NewError("email_taken", "email already registered", http.StatusConflict))
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "email or password is incorrect", http.StatusUnauthorized))
	case errors.Is(err, services.ErrUserNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("user_not_found", "user not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("user_error", "account operation failed", http.StatusInternalServerError))
	}
}
