// Package client talks to the remote spreadsheet collaborator: a single
// key-and-action-addressed HTTP endpoint that accepts form-encoded POSTs and
// query-string GETs and usually, but not always, answers with JSON.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Collaborator failure modes. Transport errors and unparsable bodies are
// distinguished because login maps them to different redirect indicators.
var (
	ErrUpstreamTransport = errors.New("collaborator unreachable")
	ErrUpstreamParse     = errors.New("collaborator returned an unparsable response")
)

// AuthUser is the user object returned by the authenticate action.
type AuthUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuthResult is the parsed response of the authenticate action.
type AuthResult struct {
	Success bool     `json:"success"`
	User    AuthUser `json:"user"`
	Message string   `json:"message"`
}

// OpResult is the generic {success, message} shape relayed for write actions.
type OpResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserRecord is a user row as returned by getUsers. Fields are relayed
// verbatim; this layer never persists them.
type UserRecord struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CreatedDate string `json:"createdDate,omitempty"`
}

// SheetsClient handles communication with the spreadsheet collaborator.
type SheetsClient struct {
	httpClient *http.Client
	scriptURL  string
	apiKey     string
}

// NewSheetsClient creates a client for the given script endpoint. Every
// request carries the shared key; there are no retries.
func NewSheetsClient(scriptURL, apiKey string, timeout time.Duration) *SheetsClient {
	return &SheetsClient{
		httpClient: &http.Client{Timeout: timeout},
		scriptURL:  scriptURL,
		apiKey:     apiKey,
	}
}

// Authenticate verifies credentials against the collaborator.
func (c *SheetsClient) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	form := url.Values{}
	form.Set("action", "authenticate")
	form.Set("username", username)
	form.Set("password", password)

	body, err := c.postForm(ctx, form)
	if err != nil {
		return nil, err
	}

	var result AuthResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamParse, err)
	}
	return &result, nil
}

// GetUsers fetches all user records. An unparsable body degrades to an
// empty list rather than an error.
func (c *SheetsClient) GetUsers(ctx context.Context) ([]UserRecord, error) {
	body, err := c.get(ctx, url.Values{"action": {"getUsers"}})
	if err != nil {
		return nil, err
	}

	var users []UserRecord
	if err := json.Unmarshal(body, &users); err != nil {
		return []UserRecord{}, nil
	}
	return users, nil
}

// AddUser relays a new user to the collaborator.
func (c *SheetsClient) AddUser(ctx context.Context, username, email, password, role string) (*OpResult, error) {
	form := url.Values{}
	form.Set("action", "addUser")
	form.Set("username", username)
	form.Set("email", email)
	form.Set("password", password)
	form.Set("role", role)

	return c.postOp(ctx, form)
}

// UpdateUser relays an update, addressed by the user's original username.
// The password is only forwarded when one was supplied.
func (c *SheetsClient) UpdateUser(ctx context.Context, originalUsername, username, email, password, role string) (*OpResult, error) {
	form := url.Values{}
	form.Set("action", "updateUser")
	form.Set("originalUsername", originalUsername)
	form.Set("username", username)
	form.Set("email", email)
	form.Set("role", role)
	if strings.TrimSpace(password) != "" {
		form.Set("password", password)
	}

	return c.postOp(ctx, form)
}

// DeleteUser relays a deletion.
func (c *SheetsClient) DeleteUser(ctx context.Context, username string) (*OpResult, error) {
	form := url.Values{}
	form.Set("action", "deleteUser")
	form.Set("username", username)

	return c.postOp(ctx, form)
}

// Verify looks up a certificate by number. The collaborator sometimes
// answers with plain text; that degrades to {message, valid:false}.
func (c *SheetsClient) Verify(ctx context.Context, certificateNo string) (map[string]any, error) {
	body, err := c.get(ctx, url.Values{
		"action":        {"verify"},
		"certificateNo": {certificateNo},
	})
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return map[string]any{"message": string(body), "valid": false}, nil
	}
	return result, nil
}

// AddRecord forwards arbitrary form fields to the collaborator. Used by the
// generic add route, which does not interpret the payload.
func (c *SheetsClient) AddRecord(ctx context.Context, fields url.Values) (map[string]any, error) {
	form := url.Values{}
	for key, values := range fields {
		for _, v := range values {
			form.Add(key, v)
		}
	}

	body, statusOK, err := c.postFormStatus(ctx, form)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		message := "Failed to add data"
		if statusOK {
			message = "Data added successfully"
		}
		return map[string]any{"success": statusOK, "message": message}, nil
	}
	return result, nil
}

// ListRecords fetches everything the collaborator returns when no action is
// given. Unparsable bodies degrade to an empty array.
func (c *SheetsClient) ListRecords(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, url.Values{})
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(body), nil
}

// postOp posts a form and relays the {success, message} shape, synthesizing
// one from the HTTP status when the body is not JSON.
func (c *SheetsClient) postOp(ctx context.Context, form url.Values) (*OpResult, error) {
	body, statusOK, err := c.postFormStatus(ctx, form)
	if err != nil {
		return nil, err
	}

	var result OpResult
	if err := json.Unmarshal(body, &result); err != nil {
		message := "Request failed"
		if statusOK {
			message = "Request completed"
		}
		return &OpResult{Success: statusOK, Message: message}, nil
	}
	return &result, nil
}

func (c *SheetsClient) postForm(ctx context.Context, form url.Values) ([]byte, error) {
	body, _, err := c.postFormStatus(ctx, form)
	return body, err
}

func (c *SheetsClient) postFormStatus(ctx context.Context, form url.Values) ([]byte, bool, error) {
	form.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build collaborator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUpstreamTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUpstreamTransport, err)
	}

	return body, resp.StatusCode < 400, nil
}

func (c *SheetsClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scriptURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build collaborator request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamTransport, err)
	}

	return body, nil
}
