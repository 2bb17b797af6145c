// Package client is the typed request helper the dashboard builds on.
// It owns credential storage and error decoding; the UI only sees typed
// results and *APIError values.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mwangaza/darasa/core/school"
)

type (
	// TokenStore holds the bearer credential between requests.
	TokenStore interface {
		Token() string
		SetToken(token string)
		Clear()
	}

	Client struct {
		baseURL string
		http    *http.Client
		store   TokenStore
	}

	// APIError carries a decoded error response.
	// Fields is populated for 400s with field-level detail.
	APIError struct {
		StatusCode int
		Message    string
		Fields     map[string]string
	}
)

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for field, msg := range e.Fields {
			parts = append(parts, field+": "+msg)
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}
	return e.Message
}

func New(baseURL string, store TokenStore, httpClient ...*http.Client) *Client {
	hc := &http.Client{Timeout: 30 * time.Second}
	if len(httpClient) > 0 && httpClient[0] != nil {
		hc = httpClient[0]
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		store:   store,
	}
}

// MemoryTokenStore is the default TokenStore; a browser shell would swap in
// one backed by its local storage.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

var _ TokenStore = (*MemoryTokenStore)(nil)

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Login obtains a token for email/password and stores it for later requests.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return err
	}
	c.store.SetToken(out.Token)
	return nil
}

// Logout clears the stored credential.
func (c *Client) Logout() {
	c.store.Clear()
}

func (c *Client) Classes(ctx context.Context) ([]school.ClassSummary, error) {
	var out []school.ClassSummary
	err := c.do(ctx, http.MethodGet, "/classes", nil, &out)
	return out, err
}

func (c *Client) Roster(ctx context.Context, classID string) ([]school.Student, error) {
	var out []school.Student
	err := c.do(ctx, http.MethodGet, "/classes/"+classID+"/roster", nil, &out)
	return out, err
}

func (c *Client) Metrics(ctx context.Context, classID string) ([]school.StudentMetric, error) {
	var out []school.StudentMetric
	err := c.do(ctx, http.MethodGet, "/classes/"+classID+"/metrics", nil, &out)
	return out, err
}

func (c *Client) Assignments(ctx context.Context, classID string) ([]school.Assignment, error) {
	var out []school.Assignment
	err := c.do(ctx, http.MethodGet, "/classes/"+classID+"/assignments", nil, &out)
	return out, err
}

func (c *Client) CreateAssignment(ctx context.Context, na school.NewAssignment) (school.Assignment, error) {
	var out school.Assignment
	err := c.do(ctx, http.MethodPost, "/assignments", na, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return errors.Wrap(err, "encoding request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.store.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decoding response body")
}

// decodeError turns a non-2xx response into an *APIError, surfacing the
// server-provided message verbatim where available. A 401 anywhere clears
// the stored credential; redirecting to login is the UI's concern.
func (c *Client) decodeError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		c.store.Clear()
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return apiErr
	}

	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err == nil {
		if msg, ok := fields["error"]; ok && len(fields) == 1 {
			apiErr.Message = msg
		} else if len(fields) > 0 {
			apiErr.Message = "validation failed"
			apiErr.Fields = fields
		}
		return apiErr
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}
