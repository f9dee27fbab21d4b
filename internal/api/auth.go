package api

import (
	"context"
	"net/http"
	"net/url"

	"lovedu_client/internal/models"
)

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthSession, error) {
	var session models.AuthSession
	err := c.call(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Signup may succeed without issuing a token when the backend requires email verification.
func (c *Client) Signup(ctx context.Context, input models.SignupRequest) (*models.AuthSession, error) {
	var session models.AuthSession
	if err := c.call(ctx, http.MethodPost, "/auth/signup", input, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// VerifyToken sends token in the body. The request is made without an Authorization header so a
// stale stored token cannot interfere.
func (c *Client) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	req, err := jsonRequest(http.MethodPost, "/auth/verify-token", map[string]string{"token": token})
	if err != nil {
		return nil, err
	}
	req.anonymous = true

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := decode(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodGet, "/auth/user/"+url.PathEscape(userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodPut, "/auth/profile", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdatePassword(ctx context.Context, update models.PasswordUpdate) error {
	return c.call(ctx, http.MethodPut, "/auth/password", update, nil)
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthSession, error) {
	var session models.AuthSession
	err := c.call(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": refreshToken}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
