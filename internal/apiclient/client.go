package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/authbridge/internal/common"
	"github.com/dmitrijs2005/authbridge/internal/tokens"
)

// API is the set of REST calls the bridge makes. Each method issues
// exactly one request.
type API interface {
	ObtainToken(ctx context.Context, username, password string) (tokens.Pair, error)
	RefreshToken(ctx context.Context, refresh string) (tokens.Pair, error)
	CreateUser(ctx context.Context, in UserCreate) error
	ChangePassword(ctx context.Context, in UserChangePassword) error
	CurrentUser(ctx context.Context) (*UserCurrent, error)
	UpdateCurrentUser(ctx context.Context, in PatchedUserCurrent) (*UserCurrent, error)
	DeleteAccount(ctx context.Context) error
}

const (
	pathToken          = "/token/"
	pathTokenRefresh   = "/token/refresh/"
	pathUsers          = "/users/"
	pathChangePassword = "/users/change-password/"
	pathMe             = "/users/me/"
	pathDeleteAccount  = "/users/delete-account/"

	maxErrorBody = 1 << 20
)

// Client is an API implementation over net/http. A Client is bound to one
// access token (or none) for its whole life and is safe for concurrent use.
type Client struct {
	baseURL     string
	http        *http.Client
	accessToken string
	userAgent   string
}

func (c *Client) ObtainToken(ctx context.Context, username, password string) (tokens.Pair, error) {
	var pair tokens.Pair
	err := c.do(ctx, http.MethodPost, pathToken, TokenObtainRequest{Username: username, Password: password}, &pair)
	return pair, err
}

func (c *Client) RefreshToken(ctx context.Context, refresh string) (tokens.Pair, error) {
	var pair tokens.Pair
	err := c.do(ctx, http.MethodPost, pathTokenRefresh, TokenRefreshRequest{Refresh: refresh}, &pair)
	return pair, err
}

func (c *Client) CreateUser(ctx context.Context, in UserCreate) error {
	return c.do(ctx, http.MethodPost, pathUsers, in, nil)
}

func (c *Client) ChangePassword(ctx context.Context, in UserChangePassword) error {
	return c.do(ctx, http.MethodPost, pathChangePassword, in, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (*UserCurrent, error) {
	u := &UserCurrent{}
	if err := c.do(ctx, http.MethodGet, pathMe, nil, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *Client) UpdateCurrentUser(ctx context.Context, in PatchedUserCurrent) (*UserCurrent, error) {
	u := &UserCurrent{}
	if err := c.do(ctx, http.MethodPatch, pathMe, in, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, pathDeleteAccount, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapError classifies a non-2xx response. Field-shaped 4xx bodies become
// FieldError, everything else a StatusError.
func mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	// only client errors carry field messages; a 5xx stays opaque whatever
	// its body looks like
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		if fields, ok := parseFieldErrors(raw); ok {
			return &FieldError{Status: resp.StatusCode, Fields: fields}
		}
	}

	se := &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		se.kind = ErrUnauthorized
	case resp.StatusCode >= 500:
		se.kind = ErrUnavailable
	}
	return se
}

// parseFieldErrors accepts only an object whose every value is a list of
// strings; anything else (e.g. {"detail": "..."}) is not field-shaped.
func parseFieldErrors(raw []byte) (FieldErrors, bool) {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil || len(generic) == 0 {
		return nil, false
	}

	fields := make(FieldErrors, len(generic))
	for k, v := range generic {
		var msgs []string
		if err := json.Unmarshal(v, &msgs); err != nil || msgs == nil {
			return nil, false
		}
		fields[k] = msgs
	}
	return fields, true
}
