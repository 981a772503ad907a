package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	RoleAdmin       = "admin"
	RoleFarmer      = "farmer"
	RoleDistributor = "distributor"
	RoleRetailer    = "retailer"
	RoleCustomer    = "customer"
)

// AssignableRoles are the roles an admin may hand out. Admin itself is not assignable.
var AssignableRoles = []string{RoleFarmer, RoleDistributor, RoleRetailer, RoleCustomer}

var (
	MesaageUserNotAllowed       = "user not allowed"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"

	ErrUserNotAllowed = errors.New("user not allowed")
	ErrTokenNotFound  = errors.New("failed to token not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")

	// ErrAuthorization means the account backend rejected the bearer token.
	// Dashboards react to it with a forced logout.
	ErrAuthorization = errors.New("authorization rejected")

	// ErrValidation is the parent of every user-visible rejection that leaves state unchanged.
	ErrValidation = errors.New("validation failed")
)

// NewValidationError wraps msg under ErrValidation.
func NewValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// NormalizeRole lower-cases role names coming from tokens and the account backend.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func IsKnownRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleAdmin, RoleFarmer, RoleDistributor, RoleRetailer, RoleCustomer:
		return true
	}
	return false
}
