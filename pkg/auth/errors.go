package auth

import "errors"

// ErrUnauthenticated is returned when an operation needs a credential and none is stored
var ErrUnauthenticated = errors.New("not logged in")

const (
	defaultLoginMessage    = "Login failed"
	defaultRegisterMessage = "Registration failed"
	defaultProfileMessage  = "Failed to fetch profile"
)

// LoginError is a rejected login attempt
type LoginError struct {
	StatusCode int
	Message    string
}

func (e *LoginError) Error() string {
	return e.Message
}

// RegistrationError is a rejected registration
type RegistrationError struct {
	StatusCode int
	Message    string
}

func (e *RegistrationError) Error() string {
	return e.Message
}

// ProfileError is a non-success answer from the profile endpoint
type ProfileError struct {
	StatusCode int
	Message    string
}

func (e *ProfileError) Error() string {
	return e.Message
}
