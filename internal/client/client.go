// Package client is the API glue the web frontend uses: thin wrappers over
// the auth and profile endpoints with a locally cached bearer token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// User mirrors the backend's user representation.
type User struct {
	ID     string `json:"_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	About  string `json:"about"`
	Avatar string `json:"avatar"`
}

// Client talks to a Mesto backend. The token obtained at sign-in/sign-up is
// cached in the TokenStore and attached to subsequent requests.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

func New(baseURL string, tokens TokenStore) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
	}
}

// SignUp registers an account and caches the returned token (auto-login).
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/signup", email, password)
}

// SignIn obtains and caches a token for an existing account.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/signin", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) error {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var payload struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || payload.Token == "" {
		return fmt.Errorf("%s failed: %s (%d)", strings.TrimPrefix(path, "/"), payload.Message, resp.StatusCode)
	}

	return c.tokens.Save(payload.Token)
}

// TokenCheck reports whether the cached token still resolves to a user,
// mirroring the frontend's startup probe.
func (c *Client) TokenCheck(ctx context.Context) (bool, error) {
	token, err := c.tokens.Token()
	if err != nil || token == "" {
		return false, nil
	}

	_, err = c.Me(ctx)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// Me fetches the profile of the token's owner.
func (c *Client) Me(ctx context.Context) (*User, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("not signed in")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch profile: status %d", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// SignOut discards the cached token; the server keeps no session state.
func (c *Client) SignOut() error {
	return c.tokens.Clear()
}
