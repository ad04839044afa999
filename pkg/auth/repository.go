package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"taskdesk/pkg/api"
	"taskdesk/pkg/utils"
)

// Doer sends one request to the backend
type Doer interface {
	Do(ctx context.Context, req api.Request) (*api.Response, error)
}

// Repository wraps the auth and profile endpoints
type Repository struct {
	client Doer
}

// NewRepository creates a repository on top of client
func NewRepository(client Doer) *Repository {
	return &Repository{client: client}
}

// Login exchanges username and password for a token and the user record
func (r *Repository) Login(ctx context.Context, username, password string) (string, User, error) {
	resp, err := r.client.Do(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      loginRequest{Username: username, Password: password},
		Anonymous: true,
	})
	if err != nil {
		return "", User{}, fmt.Errorf("%s: %w", defaultLoginMessage, err)
	}
	if !resp.StatusIn(http.StatusOK, http.StatusCreated) {
		return "", User{}, &LoginError{StatusCode: resp.StatusCode, Message: messageOr(resp, defaultLoginMessage)}
	}

	var data loginData
	if err := resp.DecodeData(&data); err != nil {
		return "", User{}, fmt.Errorf("%s: decode login: %w", defaultLoginMessage, err)
	}
	if data.Token == "" {
		return "", User{}, &LoginError{StatusCode: resp.StatusCode, Message: defaultLoginMessage}
	}

	var user User
	if data.User != nil {
		user = *data.User
	}
	return data.Token, user, nil
}

// Register creates an account. It does not log in.
func (r *Repository) Register(ctx context.Context, name, username, password string) (User, error) {
	resp, err := r.client.Do(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      "/auth/register",
		Body:      registerRequest{Name: name, Username: username, Password: password},
		Anonymous: true,
	})
	if err != nil {
		return User{}, fmt.Errorf("%s: %w", defaultRegisterMessage, err)
	}
	if !resp.StatusIn(http.StatusOK, http.StatusCreated) {
		return User{}, &RegistrationError{StatusCode: resp.StatusCode, Message: messageOr(resp, defaultRegisterMessage)}
	}

	var user User
	if err := resp.DecodeData(&user); err != nil {
		return User{}, fmt.Errorf("%s: decode user: %w", defaultRegisterMessage, err)
	}
	return user, nil
}

// Profile returns the user the stored credential belongs to
func (r *Repository) Profile(ctx context.Context) (User, error) {
	resp, err := r.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/profile",
	})
	if err != nil {
		return User{}, fmt.Errorf("%s: %w", defaultProfileMessage, err)
	}
	if resp.StatusCode != http.StatusOK {
		return User{}, &ProfileError{StatusCode: resp.StatusCode, Message: messageOr(resp, defaultProfileMessage)}
	}

	var user User
	if err := resp.DecodeData(&user); err != nil {
		return User{}, fmt.Errorf("%s: decode user: %w", defaultProfileMessage, err)
	}
	if user.ID == 0 && user.Username == "" {
		return User{}, errors.New("profile response has no user")
	}
	return user, nil
}

func messageOr(resp *api.Response, fallback string) string {
	if msg := resp.ErrorMessage(); msg != "" {
		utils.Log("Auth request failed with status %d: %s", resp.StatusCode, msg)
		return msg
	}
	return fallback
}
