package domain

import (
	"strings"
	"time"
)

// Role is the single capability flag carried by an identity.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSupplier Role = "supplier"
)

// ParseRole defaults anything other than admin to supplier.
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleSupplier
}

// Identity is the authenticated caller as persisted by the session layer.
type Identity struct {
	SupplierID   string `json:"supplierId"`
	SupplierName string `json:"supplierName"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
}

// IsAdmin reports whether the identity may perform administrative actions.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// OwnerKeys returns the values used to scope disputes to this supplier.
func (i Identity) OwnerKeys() []string {
	keys := make([]string, 0, 2)
	if v := strings.TrimSpace(i.SupplierID); v != "" {
		keys = append(keys, v)
	}
	if v := strings.TrimSpace(i.Email); v != "" {
		keys = append(keys, v)
	}
	return keys
}

// Credential is one row of the credentials table.
type Credential struct {
	Email        string
	Password     string
	SupplierID   string
	SupplierName string
	Role         Role
}

// Identity converts a matched credential into an identity.
func (c Credential) Identity() Identity {
	return Identity{
		SupplierID:   c.SupplierID,
		SupplierName: c.SupplierName,
		Email:        c.Email,
		Role:         c.Role,
	}
}

// LoginStatus is recorded for every login attempt.
type LoginStatus string

const (
	LoginStatusSuccess LoginStatus = "SUCCESS"
	LoginStatusFailed  LoginStatus = "FAILED"
)

// LoginAttempt is one row of the activity log.
type LoginAttempt struct {
	Timestamp    time.Time
	Email        string
	SupplierID   string
	SupplierName string
	Status       LoginStatus
	ErrorMessage string
}
