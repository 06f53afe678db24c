package web

import (
	"github.com/Peeetk/shop-backend/account/service"
	"github.com/Peeetk/shop-backend/account/users"
	"github.com/Peeetk/shop-backend/internal/checkout"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) validate() error {
	if r.Email == "" || r.Password == "" {
		return service.ErrInvalidInput
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) validate() error {
	if r.Email == "" || r.Password == "" {
		return service.ErrInvalidCredentials
	}
	return nil
}

type changePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r changePasswordRequest) validate() error {
	if r.Email == "" || r.OldPassword == "" || r.NewPassword == "" {
		return service.ErrInvalidInput
	}
	return nil
}

type deleteAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r deleteAccountRequest) validate() error {
	if r.Email == "" || r.Password == "" {
		return service.ErrInvalidInput
	}
	return nil
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r forgotPasswordRequest) validate() error {
	if r.Email == "" {
		return service.ErrInvalidInput
	}
	return nil
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r resetPasswordRequest) validate() error {
	if r.Token == "" || r.NewPassword == "" {
		return service.ErrInvalidInput
	}
	return nil
}

type checkoutRequest struct {
	Items []checkout.Item `json:"items"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type userResponse struct {
	Success bool         `json:"success"`
	User    users.Public `json:"user"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    users.Public `json:"user"`
}

type checkoutResponse struct {
	Success bool             `json:"success"`
	Session checkout.Session `json:"session"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
