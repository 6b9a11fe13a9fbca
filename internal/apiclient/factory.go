package apiclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/session"
)

// Factory builds clients sharing one http.Client and base URL.
type Factory struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// NewFactory validates baseURL (which includes the API prefix, e.g.
// "http://api:8000/api") and sets up a transport with the given timeout.
func NewFactory(baseURL string, timeout time.Duration, userAgent string) (*Factory, error) {
	return NewFactoryWithClient(baseURL, &http.Client{Timeout: timeout}, userAgent)
}

func NewFactoryWithClient(baseURL string, hc *http.Client, userAgent string) (*Factory, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}
	return &Factory{baseURL: strings.TrimRight(baseURL, "/"), http: hc, userAgent: userAgent}, nil
}

// ForSession returns a client carrying s's access token, or an anonymous
// client when s is nil.
func (f *Factory) ForSession(s *session.Session) API {
	c := f.Anonymous()
	if s != nil {
		c.accessToken = s.AccessToken
	}
	return c
}

// Anonymous returns a client with no credential, for registration, login
// and token refresh.
func (f *Factory) Anonymous() *Client {
	return &Client{baseURL: f.baseURL, http: f.http, userAgent: f.userAgent}
}

// Client.RefreshToken backs the session refresher.
var _ session.TokenRefresher = (*Client)(nil)
