package utils

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/proxy"

	"lanzoufetch/internal"
)

// HTTPClientConfig contains configuration for the HTTP client
type HTTPClientConfig struct {
	Timeout   time.Duration
	ProxyURL  string
	UserAgent string
	Identity  *IdentityFactory // nil builds a clock-seeded factory
}

// HTTPClient is the provider transport. Every request carries spoofed identity
// headers; no cookies are kept between calls unless a session jar is supplied.
type HTTPClient struct {
	client     *resty.Client // follows redirects
	noRedirect *resty.Client
	transport  *http.Transport
	identity   *IdentityFactory
	timeout    time.Duration
}

// NewHTTPClient creates a new HTTP client with default configuration
func NewHTTPClient() *HTTPClient {
	return NewHTTPClientWithConfig(&HTTPClientConfig{
		Timeout: 10 * time.Second,
	})
}

// NewHTTPClientWithConfig creates a new HTTP client with custom configuration
func NewHTTPClientWithConfig(config *HTTPClientConfig) *HTTPClient {
	identity := config.Identity
	if identity == nil {
		identity = NewIdentityFactory(config.UserAgent)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSClientConfig: &tls.Config{
			// The provider's mirror domains rotate certificates inconsistently
			InsecureSkipVerify: true,
		},
	}

	if config.ProxyURL != "" {
		if err := configureProxy(transport, config.ProxyURL); err != nil {
			internal.LogWarn("Failed to configure proxy %s: %v", config.ProxyURL, err)
		}
	}

	c := &HTTPClient{
		transport: transport,
		identity:  identity,
		timeout:   config.Timeout,
	}
	c.client = c.newRestyClient(transport, nil, true, config.Timeout)
	c.noRedirect = c.newRestyClient(transport, nil, false, config.Timeout)

	return c
}

// configureProxy sets up proxy configuration for the transport
func configureProxy(transport *http.Transport, proxyURL string) error {
	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}

	switch parsedURL.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsedURL)
	case "socks5":
		var auth *proxy.Auth
		if parsedURL.User != nil {
			password, _ := parsedURL.User.Password()
			auth = &proxy.Auth{User: parsedURL.User.Username(), Password: password}
		}
		dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 proxy: %w", err)
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return fmt.Errorf("unsupported proxy scheme: %s", parsedURL.Scheme)
	}

	return nil
}

// newRestyClient builds a resty client over transport. A nil jar disables cookie handling.
func (c *HTTPClient) newRestyClient(transport http.RoundTripper, jar http.CookieJar, followRedirects bool, timeout time.Duration) *resty.Client {
	rc := resty.NewWithClient(&http.Client{Jar: jar}).
		SetTransport(transport).
		SetLogger(restyLogger{}).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			internal.GetLogger().LogHTTPRequest(req.Method, req.URL, req.Header)
			return nil
		}).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			internal.GetLogger().LogHTTPResponse(resp.StatusCode(), resp.Request.URL, resp.Header())
			return nil
		})

	if timeout > 0 {
		rc.SetTimeout(timeout)
	}

	if followRedirects {
		rc.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	} else {
		rc.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}

	return rc
}

// Identity returns the header factory used by this client
func (c *HTTPClient) Identity() *IdentityFactory {
	return c.identity
}

// NewSessionClient returns a client bound to jar, sharing this client's
// transport and identity settings. The jar is the only cookie store the
// returned client ever touches.
func (c *HTTPClient) NewSessionClient(jar http.CookieJar, followRedirects bool) *resty.Client {
	return c.newRestyClient(c.transport, jar, followRedirects, 0)
}

// Get loads a page following redirects and returns its body.
// The status code is not inspected; callers parse whatever the provider served.
func (c *HTTPClient) Get(ctx context.Context, pageURL, userAgent string) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(c.identity.Headers(userAgent)).
		Get(pageURL)
	if err != nil {
		return "", internal.NewUpstreamTransportError(0, "page request failed", err).WithURL(pageURL)
	}
	return resp.String(), nil
}

// Post submits a form without following redirects and returns the body
func (c *HTTPClient) Post(ctx context.Context, fields map[string]string, postURL, referer, userAgent string, extraHeaders map[string]string) (string, error) {
	req := c.noRedirect.R().
		SetContext(ctx).
		SetHeaders(c.identity.Headers(userAgent)).
		SetFormData(fields)
	if referer != "" {
		req.SetHeader("Referer", referer)
	}
	req.SetHeaders(extraHeaders)

	resp, err := req.Post(postURL)
	if err != nil {
		return "", internal.NewUpstreamTransportError(0, "form request failed", err).WithURL(postURL)
	}
	return resp.String(), nil
}

// HeadLocation issues a browser-like GET carrying an explicit cookie header,
// without following redirects, and returns the Location header (empty when
// the response is not a redirect).
func (c *HTTPClient) HeadLocation(ctx context.Context, pageURL, referer, userAgent, cookie string) (string, error) {
	req := c.noRedirect.R().
		SetContext(ctx).
		SetHeaders(c.identity.Headers(userAgent)).
		SetHeaders(map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language":           "zh-CN,zh;q=0.9",
			"Cache-Control":             "no-cache",
			"Pragma":                    "no-cache",
			"Upgrade-Insecure-Requests": "1",
		})
	if referer != "" {
		req.SetHeader("Referer", referer)
	}
	if cookie != "" {
		req.SetHeader("Cookie", cookie)
	}

	resp, err := req.Get(pageURL)
	if err != nil {
		return "", internal.NewUpstreamTransportError(0, "redirect lookup failed", err).WithURL(pageURL)
	}
	return resp.Header().Get("Location"), nil
}

// StreamResponse is an open streaming GET on a private transport.
// The caller owns Body and must call CloseIdleConnections once done.
type StreamResponse struct {
	*http.Response
	transport *http.Transport
}

// CloseIdleConnections drops the pooled connections of the private transport
func (s *StreamResponse) CloseIdleConnections() {
	s.transport.CloseIdleConnections()
}

// OpenStream starts a GET that follows redirects and returns before the body is read.
// It runs on its own transport clone so its connection lifetime is independent
// of page fetches; on connection failure that transport is released here.
func (c *HTTPClient) OpenStream(ctx context.Context, streamURL string, headers map[string]string, timeout time.Duration) (*StreamResponse, error) {
	transport := c.transport.Clone()
	rc := c.newRestyClient(transport, nil, true, timeout)

	resp, err := rc.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeaders(c.identity.Headers("")).
		SetHeaders(headers).
		Get(streamURL)
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		transport.CloseIdleConnections()
		return nil, internal.NewUpstreamTransportError(0, "download request failed", err).WithURL(streamURL)
	}

	return &StreamResponse{Response: resp.RawResponse, transport: transport}, nil
}

// restyLogger routes resty's own diagnostics through the secure logger
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	internal.LogError("resty: "+format, v...)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	internal.LogWarn("resty: "+format, v...)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	internal.LogDebug("resty: "+format, v...)
}
