// Package client is a Go client for the blog API that owns the session
// lifecycle: it persists the issued token, attaches it to every outgoing
// request, and drops back to the anonymous state the moment the server
// rejects the token. The session has exactly two states — anonymous and
// authenticated — and every transition is atomic with the store write.
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
	"sync"
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client talks to the blog API and maintains the authenticated state.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore

	mu    sync.RWMutex
	token string
	user  *User
}

// New creates a Client for the API at baseURL, persisting the session in
// store. The returned client's HTTP transport attaches the bearer token to
// every request and observes responses for token rejection, so callers never
// handle the credential per call.
func New(baseURL string, store TokenStore) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
	}
	c.http = &http.Client{Transport: &sessionTransport{client: c, base: http.DefaultTransport}}
	return c
}

// sessionTransport decorates outgoing requests with the stored bearer token
// and clears the session when a request that carried the token comes back 401.
// This is the single enforcement point keeping client-visible auth state
// consistent with server-side token validity.
type sessionTransport struct {
	client *Client
	base   http.RoundTripper
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.client.Token()

	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Only a rejected credential clears the session; a 401 on an anonymous
	// request (e.g. a failed login) says nothing about the stored token.
	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		_ = t.client.clearSession()
	}
	return resp, nil
}

// HTTPClient returns the decorated http.Client so callers can hang arbitrary
// API requests off the managed session.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Token returns the current bearer token, or "" when anonymous.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// CurrentUser returns the in-memory user record, or nil when anonymous.
func (c *Client) CurrentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// IsAuthenticated derives the session state purely from the presence of a
// resolved user in memory.
func (c *Client) IsAuthenticated() bool {
	return c.CurrentUser() != nil
}

type credentialsRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type userResponse struct {
	User *User `json:"user"`
}

// Register creates an account and enters the authenticated state.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var resp authResponse
	err := c.postJSON(ctx, "/auth/register", credentialsRequest{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.setSession(resp.Token, resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login authenticates and enters the authenticated state.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp authResponse
	err := c.postJSON(ctx, "/auth/login", credentialsRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.setSession(resp.Token, resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout notifies the server (best effort — tokens are stateless server-side)
// and clears the session.
func (c *Client) Logout(ctx context.Context) error {
	_ = c.postJSON(ctx, "/auth/logout", nil, nil)
	return c.clearSession()
}

// Me fetches the current identity using the stored token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var resp userResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Restore loads the persisted session at startup and validates it against
// the server. It fails silently: a rejected token clears storage, while a
// transport failure keeps the stored session for the next attempt. Either
// way the client stays anonymous.
func (c *Client) Restore(ctx context.Context) bool {
	sess, err := c.store.Load()
	if err != nil || sess.Token == "" {
		return false
	}

	c.mu.Lock()
	c.token = sess.Token
	c.mu.Unlock()

	user, err := c.Me(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			_ = c.clearSession()
		} else {
			c.mu.Lock()
			c.token = ""
			c.mu.Unlock()
		}
		return false
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()
	return true
}

// setSession persists the new state before exposing it in memory, so a crash
// between the two leaves the store ahead of memory, never behind.
func (c *Client) setSession(token string, user *User) error {
	if err := c.store.Save(Session{Token: token, User: user}); err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token
	c.user = user
	c.mu.Unlock()
	return nil
}

func (c *Client) clearSession() error {
	err := c.store.Clear()
	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.mu.Unlock()
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var envelope struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if json.Unmarshal(data, &envelope) != nil || envelope.Error == "" {
		envelope.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: envelope.Error}
}
