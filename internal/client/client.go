// Package client talks to the auth HTTP API and holds the resulting session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/userauth/userauth-go/internal/model"
)

var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return e.Message
}

// Client calls the auth API. Login stores the issued token in its
// SessionStore and Logout discards it.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionStore
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client for the API at baseURL.
func New(baseURL string, sessions SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
		sessions: sessions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the locally stored session.
func (c *Client) Session() (Session, error) {
	return c.sessions.Load()
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password string) (model.RegisterResponse, error) {
	var resp model.RegisterResponse
	err := c.do(ctx, http.MethodPost, "/user/register", "", model.RegisterRequest{Email: email, Password: password}, &resp)
	return resp, err
}

// Login authenticates and persists the returned token with email.
func (c *Client) Login(ctx context.Context, email, password string) (model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/user/login", "", model.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return model.LoginResponse{}, err
	}
	if err := c.sessions.Save(Session{Token: resp.Token, Email: email}); err != nil {
		return model.LoginResponse{}, err
	}
	return resp, nil
}

// Logout tells the server and then clears the local session. The session is
// cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) (model.MessageResponse, error) {
	sess, err := c.sessions.Load()
	if err != nil {
		return model.MessageResponse{}, err
	}
	if !sess.IsAuthenticated() {
		return model.MessageResponse{}, ErrNotLoggedIn
	}

	var resp model.MessageResponse
	callErr := c.do(ctx, http.MethodPost, "/user/logout", sess.Token, nil, &resp)
	if err := c.sessions.Clear(); err != nil {
		return model.MessageResponse{}, err
	}
	if callErr != nil {
		return model.MessageResponse{}, callErr
	}
	return resp, nil
}

// Me fetches the profile of the logged-in user.
func (c *Client) Me(ctx context.Context) (model.UserResponse, error) {
	sess, err := c.sessions.Load()
	if err != nil {
		return model.UserResponse{}, err
	}
	if !sess.IsAuthenticated() {
		return model.UserResponse{}, ErrNotLoggedIn
	}

	var resp model.UserResponse
	err = c.do(ctx, http.MethodGet, "/user/me", sess.Token, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e model.ErrorResponse
		if json.Unmarshal(data, &e) != nil {
			return &APIError{StatusCode: res.StatusCode}
		}
		return &APIError{StatusCode: res.StatusCode, Message: e.Message, Fields: e.Fields}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
