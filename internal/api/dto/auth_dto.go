package dto

import (
	"time"

	"github.com/spec-kit/dispute-portal/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the identity as the portal sees it.
type UserResponse struct {
	SupplierID   string `json:"supplierId"`
	SupplierName string `json:"supplierName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

// LoginResponse is returned by POST /api/auth/login.
type LoginResponse struct {
	User UserResponse `json:"user"`
	Auth AuthResponse `json:"auth"`
}

// FromIdentity converts an identity into its response shape.
func FromIdentity(identity domain.Identity) UserResponse {
	return UserResponse{
		SupplierID:   identity.SupplierID,
		SupplierName: identity.SupplierName,
		Email:        identity.Email,
		Role:         string(identity.Role),
	}
}
