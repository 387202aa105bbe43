package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"lanzoufetch/internal"
)

// ipFirstOctets is the pool of first octets used for spoofed client addresses.
// Duplicates are intentional; they weight the draw.
var ipFirstOctets = []int{
	218, 218, 66, 66, 218, 218, 60, 60,
	202, 204, 66, 66, 66, 59, 61, 60,
	222, 221, 66, 59, 60, 60, 66, 218,
	218, 62, 63, 64, 66, 66, 122, 211,
}

const (
	lowOctetMin = 60
	lowOctetMax = 255
)

// Identity headers attached to every provider request
const (
	HeaderForwardedFor = "X-FORWARDED-FOR"
	HeaderClientIP     = "CLIENT-IP"
	HeaderUserAgent    = "User-Agent"
)

// IdentityFactory produces the spoofed client identity headers.
// It is safe for concurrent use.
type IdentityFactory struct {
	mu        sync.Mutex
	rng       *rand.Rand
	userAgent string
}

// NewIdentityFactory creates a factory seeded from the clock
func NewIdentityFactory(userAgent string) *IdentityFactory {
	return NewIdentityFactoryWithSource(rand.NewSource(time.Now().UnixNano()), userAgent)
}

// NewIdentityFactoryWithSource creates a factory drawing from src, so tests can pin the output
func NewIdentityFactoryWithSource(src rand.Source, userAgent string) *IdentityFactory {
	if userAgent == "" {
		userAgent = internal.DefaultUserAgent
	}
	return &IdentityFactory{
		rng:       rand.New(src),
		userAgent: userAgent,
	}
}

// RandomIP returns a plausible IPv4 address from the curated pool
func (f *IdentityFactory) RandomIP() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	first := ipFirstOctets[f.rng.Intn(len(ipFirstOctets))]
	return fmt.Sprintf("%d.%d.%d.%d", first, f.lowOctet(), f.lowOctet(), f.lowOctet())
}

// lowOctet must be called with mu held
func (f *IdentityFactory) lowOctet() int {
	return lowOctetMin + f.rng.Intn(lowOctetMax-lowOctetMin+1)
}

// UserAgent returns the factory's default user agent
func (f *IdentityFactory) UserAgent() string {
	return f.userAgent
}

// Headers returns a fresh identity header set. An empty userAgent keeps the default.
func (f *IdentityFactory) Headers(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = f.userAgent
	}
	ip := f.RandomIP()
	return map[string]string{
		HeaderForwardedFor: ip,
		HeaderClientIP:     ip,
		HeaderUserAgent:    userAgent,
	}
}
