package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"lanzoufetch/internal"
	"lanzoufetch/utils"
)

// downIPCookie is pre-set on every intermediate session
const downIPCookie = "down_ip"

// Session is the isolated cookie state of one intermediate resolution.
// It is created per call and dropped when the call returns.
type Session struct {
	client   *utils.HTTPClient
	jar      *cookiejar.Jar
	http     *resty.Client // follows redirects
	noFollow *resty.Client
	headers  map[string]string
}

// NewSession creates a session for origin with the down_ip marker cookie set.
// The spoofed identity is fixed for the session's lifetime.
func NewSession(client *utils.HTTPClient, origin string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	s := &Session{
		client:   client,
		jar:      jar,
		http:     client.NewSessionClient(jar, true),
		noFollow: client.NewSessionClient(jar, false),
		headers:  client.Identity().Headers(""),
	}
	if err := s.SetCookie(origin, downIPCookie, "1"); err != nil {
		return nil, err
	}
	return s, nil
}

// SetCookie stores name=value for the host of rawURL
func (s *Session) SetCookie(rawURL, name, value string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return internal.NewParseFailureError("Invalid intermediate URL").WithURL(rawURL)
	}
	s.jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	return nil
}

// CookieHeader renders the session cookies for rawURL as a Cookie header value
func (s *Session) CookieHeader(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	cookies := s.jar.Cookies(u)
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// Get loads rawURL following redirects with the session's cookies
func (s *Session) Get(ctx context.Context, rawURL string) (string, error) {
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeaders(s.headers).
		Get(rawURL)
	if err != nil {
		return "", internal.NewUpstreamTransportError(0, "intermediate page request failed", err).WithURL(rawURL)
	}
	return resp.String(), nil
}

// Post submits a form with the session's cookies, without following redirects
func (s *Session) Post(ctx context.Context, rawURL string, fields, extraHeaders map[string]string) (string, error) {
	resp, err := s.noFollow.R().
		SetContext(ctx).
		SetHeaders(s.headers).
		SetHeaders(extraHeaders).
		SetFormData(fields).
		Post(rawURL)
	if err != nil {
		return "", internal.NewUpstreamTransportError(0, "verification request failed", err).WithURL(rawURL)
	}
	return resp.String(), nil
}

// RedirectLocation requests rawURL without following redirects and returns
// the Location header, or "" when the provider answered directly
func (s *Session) RedirectLocation(ctx context.Context, rawURL string) (string, error) {
	return s.client.HeadLocation(ctx, rawURL, "", s.client.Identity().UserAgent(), s.CookieHeader(rawURL))
}
