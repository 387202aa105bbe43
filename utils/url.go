package utils

import (
	"fmt"
	"strings"

	"lanzoufetch/internal"
)

// shareMarker separates the mirror host from the share path in every provider link
const shareMarker = ".com/"

// folderPrefix marks folder share identifiers, e.g. /b0raxqelc
const folderPrefix = "b"

// ShareURLInfo contains parsed information from a share link
type ShareURLInfo struct {
	OriginalURL   string
	NormalizedURL string // share path rewritten onto the canonical domain
	Path          string // everything after the first ".com/"
	Identifier    string // Path without query or fragment
	IsFolder      bool
}

// URLValidator rewrites share links from any provider mirror onto one canonical domain
type URLValidator struct {
	baseDomain string
}

// NewURLValidator creates a validator that normalizes onto baseDomain
func NewURLValidator(baseDomain string) *URLValidator {
	if baseDomain == "" {
		baseDomain = internal.DefaultBaseDomain
	}
	return &URLValidator{baseDomain: strings.TrimRight(baseDomain, "/")}
}

// BaseDomain returns the canonical domain links are rewritten onto
func (v *URLValidator) BaseDomain() string {
	return v.baseDomain
}

// ValidateURL checks that rawURL looks like a share link
func (v *URLValidator) ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return internal.NewInvalidInputError("Please provide a URL")
	}
	if !strings.Contains(rawURL, shareMarker) {
		return internal.NewInvalidInputError("Invalid Lanzou link").WithURL(rawURL)
	}
	return nil
}

// ParseURL splits a share link and rewrites it onto the canonical domain.
// The provider runs many mirror hosts; only the path after ".com/" matters.
func (v *URLValidator) ParseURL(rawURL string) (*ShareURLInfo, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := v.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	_, path, _ := strings.Cut(rawURL, shareMarker)
	identifier := path
	if i := strings.IndexAny(identifier, "?#"); i >= 0 {
		identifier = identifier[:i]
	}

	return &ShareURLInfo{
		OriginalURL:   rawURL,
		NormalizedURL: v.baseDomain + "/" + path,
		Path:          path,
		Identifier:    identifier,
		IsFolder:      strings.HasPrefix(identifier, folderPrefix),
	}, nil
}

// EntryURL builds the share URL of a single folder entry
func (v *URLValidator) EntryURL(id string) string {
	if id == "" {
		return ""
	}
	return v.baseDomain + "/" + id
}

// String returns a string representation of the ShareURLInfo
func (info *ShareURLInfo) String() string {
	return fmt.Sprintf("ShareURLInfo{Identifier: %s, IsFolder: %t, NormalizedURL: %s}",
		info.Identifier, info.IsFolder, info.NormalizedURL)
}
