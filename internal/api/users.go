package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
)

// User is the profile record returned by /users/me.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	IsAdmin  bool   `json:"is_admin"`
}

// LoginResult is the response of POST /token. Everything the session needs
// is persisted from this one payload.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	UserEmail   string `json:"user_email"`
	IsAdmin     bool   `json:"is_admin"`
}

// Register creates an account. Duplicate emails come back as a 400 with a
// detail string; malformed fields as a structured 422.
func (c *Client) Register(ctx context.Context, email, password, nickname string) error {
	body, err := jsonBody(map[string]string{
		"email":    email,
		"password": password,
		"nickname": nickname,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/users/",
		body:        body,
		contentType: "application/json",
	}, nil)
}

// Login exchanges an email and password for a bearer token. The form field
// is named "username" per the backend's OAuth2 password flow.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("username", email); err != nil {
		return nil, fmt.Errorf("api: encode username field: %w", err)
	}
	if err := w.WriteField("password", password); err != nil {
		return nil, fmt.Errorf("api: encode password field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("api: finish multipart body: %w", err)
	}

	var result LoginResult
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/token",
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Me fetches the current user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSONAuthed(ctx, "/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the current user's nickname.
func (c *Client) UpdateProfile(ctx context.Context, nickname string) (*User, error) {
	body, err := jsonBody(map[string]string{"nickname": nickname})
	if err != nil {
		return nil, err
	}
	var user User
	err = c.do(ctx, request{
		method:      http.MethodPut,
		path:        "/users/me",
		body:        body,
		contentType: "application/json",
		authed:      true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
