package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/afripicx/nomads/internal/platform/httpx"
	"github.com/afripicx/nomads/internal/services"
)

// ContactHandlers accepts storefront contact-form submissions. The endpoint
// is anonymous, so submissions are rate limited per client address.
type ContactHandlers struct {
	contacts services.ContactService
	limiter  clientLimiter
}

const (
	maxContactBodySize   = 16 * 1024
	contactRateLimit     = 5
	contactRateWindowDur = time.Minute
)

// NewContactHandlers constructs the contact-form handler.
func NewContactHandlers(contacts services.ContactService, clock func() time.Time) *ContactHandlers {
	return &ContactHandlers{
		contacts: contacts,
		limiter: newFixedWindowLimiter(fixedWindowLimiterDeps{
			Limit:  contactRateLimit,
			Window: contactRateWindowDur,
			Clock:  clock,
		}),
	}
}

// Routes wires the /contact endpoint onto the provided router.
func (h *ContactHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/contact", h.submit)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *ContactHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contacts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("contact_service_unavailable", "contact service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if h.limiter != nil && !h.limiter.Allow(clientAddr(r)) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many submissions, try again shortly", http.StatusTooManyRequests))
		return
	}

	var req contactRequest
	if !decodeJSONBody(w, r, maxContactBodySize, &req) {
		return
	}

	message, err := h.contacts.Submit(ctx, services.ContactCommand{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Message,
	})
	if err != nil {
		h.writeContactError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"status":  "received",
		"message": message,
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func (h *ContactHandlers) writeContactError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrContactInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("contact_error", "failed to record message", http.StatusInternalServerError))
	}
}
