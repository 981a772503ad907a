package domain

import (
	"errors"
	"fmt"
)

var (
	MessageSuccessLogin      = "login successful"
	MessageSuccessRegister   = "registration successful"
	MessageSuccessGetUsers   = "users retrieved successfully"
	MessageSuccessDeleteUser = "user deleted successfully"
	MessageSuccessUpdateRole = "user role updated successfully"

	MessageFailedLogin      = "login failed"
	MessageFailedRegister   = "registration failed"
	MessageFailedGetUsers   = "failed to retrieve users"
	MessageFailedDeleteUser = "failed to delete user"
	MessageFailedUpdateRole = "failed to update role"

	ErrAdminProtected = fmt.Errorf("%w: admin accounts cannot be deleted or re-roled", ErrValidation)
	ErrInvalidRole    = fmt.Errorf("%w: unknown role", ErrValidation)
	ErrUserNotFound   = errors.New("user not found")

	// ErrAccountBackend wraps any other failure reported by the account backend.
	ErrAccountBackend = errors.New("account backend request failed")
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	RegisterRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		Role     string `json:"role" validate:"required"`
	}

	UpdateRoleRequest struct {
		Role string `json:"role" validate:"required"`
	}

	User struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Password string `json:"password,omitempty"`
	}

	LoginResponse struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}
)
