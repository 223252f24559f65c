package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/harxxhilgg/univent/internal/models"
	"github.com/harxxhilgg/univent/internal/session"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

// Events fetches all upcoming events, soonest first.
func (c *Client) Events(ctx context.Context) ([]models.Event, error) {
	return c.getEvents(ctx, "/events/getAllEvents")
}

// EventsByUser fetches the events created by the given account.
func (c *Client) EventsByUser(ctx context.Context, email string) ([]models.Event, error) {
	return c.getEvents(ctx, "/events/user/"+url.PathEscape(email))
}

// CreateEvent publishes a new event under the current session's identity.
// Guests are rejected locally, mirroring the server-side gate.
func (c *Client) CreateEvent(ctx context.Context, ev models.Event) (models.Event, error) {
	current := c.sessions.Get()
	if current.User == nil {
		return models.Event{}, pkgerrors.ErrInvalidCredentials
	}
	if session.IsGuest(current.User.Email) {
		return models.Event{}, pkgerrors.ErrGuestRestricted
	}
	ev.CreatedByEmail = current.User.Email

	var resp struct {
		Message string       `json:"message"`
		Event   models.Event `json:"event"`
	}
	status, err := c.postAuthedJSON(ctx, "/events/create", ev, &resp)
	if err != nil {
		return models.Event{}, err
	}
	switch {
	case status == http.StatusUnauthorized:
		return models.Event{}, fmt.Errorf("%w: token rejected by server, log in again", pkgerrors.ErrInvalidCredentials)
	case status == http.StatusForbidden:
		return models.Event{}, fmt.Errorf("%w: %s", pkgerrors.ErrGuestRestricted, resp.Message)
	case status != http.StatusCreated:
		return models.Event{}, fmt.Errorf("%w: create event failed: %s", pkgerrors.ErrInternal, resp.Message)
	}
	return resp.Event, nil
}

func (c *Client) getEvents(ctx context.Context, path string) ([]models.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: events fetch returned %d", pkgerrors.ErrInternal, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", pkgerrors.ErrNetwork, err)
	}
	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}
