// Package authclient is the client side of the univent auth API. It owns
// the login/signup/logout flows, persists the issued token and keeps the
// session store consistent with it.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/harxxhilgg/univent/internal/session"
	"github.com/harxxhilgg/univent/internal/token"
	"github.com/harxxhilgg/univent/internal/tokenstore"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

// Client calls the backend auth endpoints and feeds the session store.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   tokenstore.Store
	sessions *session.Store
}

func New(baseURL string, tokens tokenstore.Store, sessions *session.Store) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		tokens:   tokens,
		sessions: sessions,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    *session.User `json:"user"`
}

// Login authenticates against POST /auth/login. On success the token is
// persisted, decoded, and the identity derived from its claims installs
// into the session store with the Main route. The echoed user object is
// ignored for identity; the claims are the single source, which keeps the
// session from drifting from what the token actually says.
func (c *Client) Login(ctx context.Context, email, password string) (session.User, error) {
	if email == "" || password == "" {
		return session.User{}, pkgerrors.ErrMissingFields
	}

	var resp loginResponse
	status, err := c.postJSON(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return session.User{}, err
	}
	if status < 200 || status > 299 {
		slog.Info("login rejected", "status", status, "message", resp.Message)
		return session.User{}, fmt.Errorf("%w: %s", pkgerrors.ErrInvalidCredentials, resp.Message)
	}

	if err := c.tokens.Set(ctx, tokenstore.TokenKey, resp.Token); err != nil {
		return session.User{}, err
	}

	claims, err := token.Decode(resp.Token)
	if err != nil || !claims.HasIdentity() {
		c.discardToken(ctx)
		return session.User{}, fmt.Errorf("%w: server issued an undecodable token", pkgerrors.ErrMalformedToken)
	}

	user := session.User{ID: claims.UserID, Username: claims.Username, Email: claims.Email}
	c.sessions.Apply(&user, session.RouteMain)
	slog.Info("logged in", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Signup registers a new account against POST /auth/signup. It does not
// authenticate the session; callers log in separately.
func (c *Client) Signup(ctx context.Context, username, email, password string) (string, error) {
	if username == "" || email == "" || password == "" {
		return "", pkgerrors.ErrMissingFields
	}

	var resp messageResponse
	status, err := c.postJSON(ctx, "/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusBadRequest && isEmailTakenMessage(resp.Message):
		return "", fmt.Errorf("%w: %s", pkgerrors.ErrEmailTaken, email)
	case status < 200 || status > 299:
		return "", fmt.Errorf("%w: signup failed: %s", pkgerrors.ErrInternal, resp.Message)
	}

	slog.Info("account created", "username", username)
	return resp.Message, nil
}

// GuestLogin installs the fixed guest identity without touching the
// network or the token store.
func (c *Client) GuestLogin() session.Session {
	guest := session.Guest()
	c.sessions.Apply(&guest, session.RouteMain)
	slog.Info("continuing as guest")
	return c.sessions.Get()
}

// Logout deletes the persisted token and resets the session to the Auth
// route. The session is cleared even if the delete fails; a stale file is
// recoverable, a phantom login is not.
func (c *Client) Logout(ctx context.Context) error {
	err := c.tokens.Delete(ctx, tokenstore.TokenKey)
	c.sessions.Apply(nil, session.RouteAuth)
	if err != nil {
		slog.Warn("token delete failed during logout", "error", err)
		return err
	}
	slog.Info("logged out")
	return nil
}

// DeleteAccount removes the account server-side, then logs out locally.
// Guests have no account to delete.
func (c *Client) DeleteAccount(ctx context.Context, email string) error {
	if session.IsGuest(email) {
		return pkgerrors.ErrGuestRestricted
	}
	if email == "" {
		return pkgerrors.ErrMissingFields
	}

	var resp messageResponse
	status, err := c.doJSON(ctx, http.MethodDelete, "/auth/deleteAccount", map[string]string{"email": email}, &resp)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: delete account failed: %s", pkgerrors.ErrInternal, resp.Message)
	}
	return c.Logout(ctx)
}

func isEmailTakenMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "already registered") || strings.Contains(m, "already exists")
}

func (c *Client) discardToken(ctx context.Context) {
	if err := c.tokens.Delete(ctx, tokenstore.TokenKey); err != nil {
		slog.Warn("failed to delete token", "error", err)
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) (int, error) {
	return c.send(ctx, http.MethodPost, path, "", body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) (int, error) {
	return c.send(ctx, method, path, "", body, out)
}

// postAuthedJSON sends to an endpoint behind the server's bearer
// middleware, attaching the persisted token. No stored token means the
// session cannot be valid server-side, so the request is not attempted.
func (c *Client) postAuthedJSON(ctx context.Context, path string, body any, out any) (int, error) {
	tok, err := c.tokens.Get(ctx, tokenstore.TokenKey)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return 0, fmt.Errorf("%w: no stored token, log in first", pkgerrors.ErrInvalidCredentials)
		}
		return 0, err
	}
	return c.send(ctx, http.MethodPost, path, tok, body, out)
}

// send marshals a JSON request and decodes the JSON response, successful
// or not. A transport-level failure maps to ErrNetwork; callers branch on
// the returned status for everything else.
func (c *Client) send(ctx context.Context, method, path, bearer string, body any, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", pkgerrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read response: %v", pkgerrors.ErrNetwork, err)
	}
	if out != nil && len(data) > 0 {
		// Error bodies share the {message} envelope; decode failures on
		// them are not fatal, the status code already tells the story.
		if err := json.Unmarshal(data, out); err != nil && resp.StatusCode < 300 {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
