// Package client is the requester-side SDK for the admission API: thin
// context-first wrappers over the HTTP surface plus the bounded polling loop
// that discovers an out-of-band decision.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Status mirrors the wire values of the check-access endpoint.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusNotFound Status = "not found"
)

// Role mirrors the wire values of the check-role endpoint.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleApproved Role = "approved"
	RolePending  Role = "pending"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client talks to one admission service on behalf of one identity. The
// email is the credential the out-of-scope auth layer would have verified;
// it rides along as a header on every call.
type Client struct {
	baseURL    string
	email      string
	httpClient *http.Client
}

func New(baseURL, email string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		email:      email,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateRoom registers a room under the caller's identity. An empty roomID
// gets a generated one; the server never generates ids itself.
func (c *Client) CreateRoom(ctx context.Context, roomID string) (string, error) {
	if roomID == "" {
		roomID = uuid.NewString()
	}

	body := map[string]string{"roomId": roomID}
	if err := c.do(ctx, http.MethodPost, "/api/rooms", body, nil); err != nil {
		return "", err
	}

	return roomID, nil
}

func (c *Client) RequestAccess(ctx context.Context, roomID string) error {
	path := fmt.Sprintf("/api/rooms/%s/request-access", roomID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) CheckStatus(ctx context.Context, roomID string) (Status, error) {
	var res struct {
		Status Status `json:"status"`
	}

	path := fmt.Sprintf("/api/rooms/%s/access", roomID)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return "", err
	}

	return res.Status, nil
}

func (c *Client) CheckRole(ctx context.Context, roomID string) (Role, error) {
	var res struct {
		Role Role `json:"role"`
	}

	path := fmt.Sprintf("/api/rooms/%s/role", roomID)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return "", err
	}

	return res.Role, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, res any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Email", c.email)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Message == "" {
			envelope.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Message}
	}

	if res != nil {
		return json.NewDecoder(resp.Body).Decode(res)
	}

	return nil
}
