package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fuuti/storefront-api/internal/api/shared"
	"github.com/fuuti/storefront-api/internal/domain"
	"github.com/fuuti/storefront-api/internal/service"
	"github.com/fuuti/storefront-api/internal/service/auth"
	"github.com/fuuti/storefront-api/internal/store"
)

// AuthHandler serves the signup, activation, login and password-recovery
// endpoints.
type AuthHandler struct {
	db         *sql.DB
	txTimeout  time.Duration
	validate   *validator.Validate
	users      *service.UserService
	otps       *service.OTPService
	passwords  *service.PasswordService
	sessions   *service.SessionService
	jwtService auth.JWTService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	db *sql.DB,
	txTimeout time.Duration,
	users *service.UserService,
	otps *service.OTPService,
	passwords *service.PasswordService,
	sessions *service.SessionService,
	jwtService auth.JWTService,
) *AuthHandler {
	return &AuthHandler{
		db:         db,
		txTimeout:  txTimeout,
		validate:   validator.New(),
		users:      users,
		otps:       otps,
		passwords:  passwords,
		sessions:   sessions,
		jwtService: jwtService,
	}
}

// Register handles POST /api/auth/register. The user row, credential row
// and activation OTP land in one transaction.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	tx, err := store.Begin(r.Context(), h.db, h.txTimeout)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Email:      req.Email,
		Phone:      req.Phone,
		Gender:     req.Gender,
		Password:   req.NewPassword,
	}, tx)
	if err != nil {
		if errors.Is(err, store.ErrConstraintViolation) {
			shared.FinalizeError(w, r, tx, http.StatusConflict, "An account with this email or phone already exists", err)
			return
		}
		shared.FinalizeError(w, r, tx, http.StatusInternalServerError, "Unable to create account", err)
		return
	}

	shared.FinalizeSuccess(w, r, tx, http.StatusCreated, RegisterResponse{
		Message: "Account created. Check your email for the activation code.",
		UserID:  user.ID,
	})
}

// ActivationOTP handles POST /api/auth/activation/otp, re-sending the
// activation code to a pending account.
func (h *AuthHandler) ActivationOTP(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, _, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			shared.FinalizeError(w, r, nil, http.StatusNotFound, "Account not found", err)
			return
		}
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to send activation code", err)
		return
	}
	if user.Status != domain.UserStatusPending {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Account is not pending activation")
		return
	}

	if err := h.users.SendActivationOTP(r.Context(), *user); err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to send activation code", err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, map[string]string{
		"message": "Activation code sent",
	})
}

// VerifyEmail handles PATCH /api/auth/verify_email. A valid code activates
// the account and opens the first session.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	valid, err := h.otps.Validate(r.Context(), req.UserID, req.OTP)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to verify code", err)
		return
	}
	if !valid {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid or expired code")
		return
	}

	if err := h.users.Activate(r.Context(), req.UserID); err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to activate account", err)
		return
	}

	token, err := h.openSession(r, req.UserID)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to start session", err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, AuthResponse{
		Message: "Account activated",
		Token:   token,
	})
}

// Login handles POST /api/auth/login: the first factor. A matching
// password triggers a login OTP; no token is issued yet.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, _, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to log in", err)
		return
	}

	switch user.Status {
	case domain.UserStatusPending:
		shared.RespondWithError(w, r, http.StatusForbidden, "Account pending activation")
		return
	case domain.UserStatusSuspended, domain.UserStatusDeactivated:
		shared.RespondWithError(w, r, http.StatusForbidden, "Account blocked")
		return
	}

	if _, err := h.passwords.Verify(r.Context(), user.ID, req.Password); err != nil {
		if errors.Is(err, service.ErrWrongPassword) || errors.Is(err, service.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to log in", err)
		return
	}

	if err := h.users.SendLoginOTP(r.Context(), *user); err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to log in", err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, map[string]any{
		"message": "Login code sent",
		"user_id": user.ID,
	})
}

// VerifyLoginOTP handles POST /api/auth/login/otp: the second factor.
// A valid code ends any previous sessions and issues a token for a new one.
func (h *AuthHandler) VerifyLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	valid, err := h.otps.Validate(r.Context(), req.UserID, req.OTP)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to verify code", err)
		return
	}
	if !valid {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid or expired code")
		return
	}

	if err := h.sessions.EndActiveSessions(r.Context(), req.UserID); err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to log in", err)
		return
	}

	token, err := h.openSession(r, req.UserID)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to log in", err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   token,
	})
}

// PasswordResetOTP handles POST /api/auth/password. The OTP
// rotation runs in its own transaction so a mail failure leaves no orphaned
// code.
func (h *AuthHandler) PasswordResetOTP(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, _, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// The same response either way, so the endpoint does not reveal
			// which emails have accounts.
			shared.RespondWithSuccess(w, r, http.StatusOK, map[string]string{
				"message": "If the account exists, a reset code has been sent",
			})
			return
		}
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to send reset code", err)
		return
	}

	tx, err := store.Begin(r.Context(), h.db, h.txTimeout)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
		return
	}

	if err := h.users.SendPasswordResetOTP(r.Context(), *user, tx); err != nil {
		shared.FinalizeError(w, r, tx, http.StatusInternalServerError, "Unable to send reset code", err)
		return
	}

	shared.FinalizeSuccess(w, r, tx, http.StatusOK, map[string]string{
		"message": "If the account exists, a reset code has been sent",
	})
}

// ResetPassword handles PATCH /api/auth/password. A valid code
// rotates the credential, ends every session and issues a fresh token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	valid, err := h.otps.Validate(r.Context(), req.UserID, req.OTP)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to reset password", err)
		return
	}
	if !valid {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid or expired code")
		return
	}

	user, err := h.users.FindByID(r.Context(), req.UserID)
	if err != nil || user == nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to reset password", err)
		return
	}

	previous, err := h.passwords.FindActive(r.Context(), req.UserID)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to reset password", err)
		return
	}

	if err := h.sessions.EndActiveSessions(r.Context(), user.ID); err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to reset password", err)
		return
	}

	token, err := h.openSession(r, user.ID)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to start session", err)
		return
	}

	tx, err := store.Begin(r.Context(), h.db, h.txTimeout)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
		return
	}

	if err := h.passwords.Rotate(r.Context(), *user, req.NewPassword, previous.ID, tx); err != nil {
		shared.FinalizeError(w, r, tx, http.StatusInternalServerError, "Unable to reset password", err)
		return
	}

	shared.FinalizeSuccess(w, r, tx, http.StatusOK, AuthResponse{
		Message: "Password reset",
		Token:   token,
	})
}

// openSession creates a login session for the user and returns its token.
func (h *AuthHandler) openSession(r *http.Request, userID int64) (string, error) {
	session, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		return "", err
	}
	return h.jwtService.GenerateToken(r.Context(), userID, session.ID)
}

// validationMessage renders the first field error of a failed validation.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return "Invalid value for field " + fieldErrs[0].Field()
	}
	return "Invalid request payload"
}
