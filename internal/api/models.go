// Package api implements the HTTP handlers. Each mutating handler opens a
// transaction handle up front, threads it through the services it calls, and
// hands it to exactly one shared finalizer together with the response.
package api

import "github.com/shopspring/decimal"

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	MiddleName      string `json:"middle_name" validate:"omitempty"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Gender          string `json:"gender" validate:"required,oneof=male female other"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// RegisterResponse confirms signup; the account stays pending until the
// emailed code is verified.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

// EmailRequest identifies an account by email, for OTP-dispatch endpoints.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest submits a one-time code for a user.
type VerifyOTPRequest struct {
	UserID int64  `json:"user_id" validate:"required"`
	OTP    string `json:"otp" validate:"required,len=6"`
}

// LoginRequest is the first factor of the login flow.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest completes a password reset with the emailed code.
type PasswordResetRequest struct {
	UserID          int64  `json:"user_id" validate:"required"`
	OTP             string `json:"otp" validate:"required,len=6"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// PasswordUpdateRequest changes the password of an authenticated user.
type PasswordUpdateRequest struct {
	Password        string `json:"password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,nefield=Password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// AuthResponse carries a fresh session token.
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// CreateProductRequest adds a catalog entry.
type CreateProductRequest struct {
	Name              string          `json:"name" validate:"required"`
	Price             decimal.Decimal `json:"price" validate:"required"`
	Description       string          `json:"description" validate:"required"`
	AvailableQuantity int64           `json:"available_quantity" validate:"required,gte=0"`
}

// OrderItem is one line of an order request.
type OrderItem struct {
	Product  int64 `json:"product" validate:"required"`
	Quantity int64 `json:"quantity" validate:"required,gte=1"`
}

// CreateOrderRequest places an order.
type CreateOrderRequest struct {
	Items []OrderItem `json:"items" validate:"required,min=1,dive"`
}
