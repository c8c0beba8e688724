package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fuuti/storefront-api/internal/api/middleware"
	"github.com/fuuti/storefront-api/internal/api/shared"
	"github.com/fuuti/storefront-api/internal/service"
	"github.com/fuuti/storefront-api/internal/service/auth"
	"github.com/fuuti/storefront-api/internal/store"
)

// AccountHandler serves the authenticated account endpoints.
type AccountHandler struct {
	db         *sql.DB
	txTimeout  time.Duration
	validate   *validator.Validate
	passwords  *service.PasswordService
	sessions   *service.SessionService
	jwtService auth.JWTService
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(
	db *sql.DB,
	txTimeout time.Duration,
	passwords *service.PasswordService,
	sessions *service.SessionService,
	jwtService auth.JWTService,
) *AccountHandler {
	return &AccountHandler{
		db:         db,
		txTimeout:  txTimeout,
		validate:   validator.New(),
		passwords:  passwords,
		sessions:   sessions,
		jwtService: jwtService,
	}
}

// Me handles GET /api/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, user)
}

// Logout handles PATCH /api/logout, ending the current session.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.sessions.End(r.Context(), session); err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to log out", err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, map[string]string{
		"message": "Logged out",
	})
}

// UpdatePassword handles PATCH /api/password. The current password
// is the proof of ownership. Every other session is switched off and a fresh
// token issued; the credential rotation itself is the transactional step.
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req PasswordUpdateRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	current, err := h.passwords.Verify(r.Context(), user.ID, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to update password", err)
		return
	}

	if err := h.sessions.EndActiveSessions(r.Context(), user.ID); err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to update password", err)
		return
	}

	session, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to start session", err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID, session.ID)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to start session", err)
		return
	}

	tx, err := store.Begin(r.Context(), h.db, h.txTimeout)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
		return
	}

	if err := h.passwords.Rotate(r.Context(), user, req.NewPassword, current.ID, tx); err != nil {
		shared.FinalizeError(w, r, tx, http.StatusInternalServerError, "Unable to update password", err)
		return
	}

	shared.FinalizeSuccess(w, r, tx, http.StatusOK, AuthResponse{
		Message: "Password updated",
		Token:   token,
	})
}
