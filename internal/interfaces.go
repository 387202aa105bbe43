package internal

import "context"

// LinkResolver turns a share link into a direct URL or a folder listing
type LinkResolver interface {
	Resolve(ctx context.Context, link *ShareLink) (*Resolution, error)
}

// PageFetcher is the subset of the transport the resolver drives for page and AJAX calls
type PageFetcher interface {
	Get(ctx context.Context, url, userAgent string) (string, error)
	Post(ctx context.Context, fields map[string]string, url, referer, userAgent string, extraHeaders map[string]string) (string, error)
}

// RateLimiter controls bandwidth usage
type RateLimiter interface {
	Wait(ctx context.Context, n int) error
}
