package downloader

import (
	"context"
	"strings"

	"lanzoufetch/internal"
	"lanzoufetch/utils"
)

// Resolver implements the LinkResolver interface for Lanzou share links
type Resolver struct {
	client    *utils.HTTPClient
	pages     internal.PageFetcher
	validator *utils.URLValidator
	config    *internal.Config
}

// passwordParams are the ajaxm.php inputs scraped from a password-protected page
type passwordParams struct {
	File string
	Sign string
}

func (p passwordParams) fields(password string) map[string]string {
	return map[string]string{
		"action": "downprocess",
		"sign":   p.Sign,
		"p":      password,
		"kd":     "1",
	}
}

// iframeParams are the ajaxm.php inputs scraped from the download iframe
type iframeParams struct {
	File   string
	WpSign string
	Signs  string
}

func (p iframeParams) fields() map[string]string {
	return map[string]string{
		"action":     "downprocess",
		"websignkey": p.Signs,
		"signs":      p.Signs,
		"sign":       p.WpSign,
		"websign":    "",
		"kd":         "1",
		"ves":        "1",
	}
}

// NewResolver creates a resolver with a transport built from config
func NewResolver(config *internal.Config) *Resolver {
	client := utils.NewHTTPClientWithConfig(&utils.HTTPClientConfig{
		Timeout:   config.PageTimeoutDuration(),
		ProxyURL:  config.ProxyURL,
		UserAgent: config.UserAgent,
	})
	return NewResolverWithClient(client, config)
}

// NewResolverWithClient creates a resolver over an existing transport
func NewResolverWithClient(client *utils.HTTPClient, config *internal.Config) *Resolver {
	return &Resolver{
		client:    client,
		pages:     client,
		validator: utils.NewURLValidator(config.BaseDomain),
		config:    config,
	}
}

// Client returns the transport the resolver runs on
func (r *Resolver) Client() *utils.HTTPClient {
	return r.client
}

// Resolve turns a share link into a direct download URL or, for folder
// links, one page of the folder listing
func (r *Resolver) Resolve(ctx context.Context, link *internal.ShareLink) (*internal.Resolution, error) {
	if link == nil || strings.TrimSpace(link.RawURL) == "" {
		return nil, internal.NewInvalidInputError("Please provide a URL")
	}

	info, err := r.validator.ParseURL(link.RawURL)
	if err != nil {
		return nil, err
	}

	if info.IsFolder {
		page := link.FolderPage
		if page == 0 {
			page = 1
		}
		if page < 1 {
			return nil, internal.NewInvalidInputError("Page number must be at least 1")
		}

		internal.LogDebug("Resolving folder %s page %d", info.Identifier, page)
		listing, err := r.resolveFolder(ctx, info, link.Password, page)
		if err != nil {
			return nil, err
		}
		return &internal.Resolution{Folder: listing}, nil
	}

	internal.LogDebug("Resolving file %s", info.Identifier)
	target, err := r.resolveFile(ctx, info, link)
	if err != nil {
		return nil, err
	}
	return &internal.Resolution{Target: target}, nil
}

func (r *Resolver) resolveFile(ctx context.Context, info *utils.ShareURLInfo, link *internal.ShareLink) (*internal.ResolvedTarget, error) {
	pageURL := info.NormalizedURL

	page, err := r.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if isCancelled(page) {
		return nil, internal.NewUpstreamRejectedError("File sharing has been cancelled").WithURL(pageURL)
	}

	target := &internal.ResolvedTarget{
		Name: displayText(fileNameRules.FirstMatch(page)),
		Size: displayText(fileSizeRules.FirstMatch(page)),
	}

	var result *fileAjaxResult
	protected := strings.Contains(page, passwordMarker)
	if protected {
		result, err = r.submitPassword(ctx, page, pageURL, link.Password)
	} else {
		result, err = r.submitIframe(ctx, page)
	}
	if err != nil {
		return nil, err
	}

	if result.Zt != ztSuccess {
		return nil, internal.NewUpstreamRejectedError(messageOr(result.Inf, "Unknown error")).
			WithURL(pageURL).
			WithContext("zt", int(result.Zt))
	}

	// The password endpoint reports the real file name in inf
	if protected && result.Inf != "" {
		target.Name = displayText(result.Inf.String())
	}

	dom, fileURL := result.Dom.String(), result.URL.String()
	fallback := dom + "/file/" + fileURL

	target.URL = finalizeURL(r.resolveIntermediate(ctx, dom, fileURL), fallback, link.RenameSuffix)
	internal.LogInfo("Resolved %s (%s)", info.Identifier, target.Name)

	return target, nil
}

// submitPassword posts the share password for a protected page
func (r *Resolver) submitPassword(ctx context.Context, page, pageURL, password string) (*fileAjaxResult, error) {
	if password == "" {
		return nil, internal.NewInvalidInputError("Please provide the share password")
	}

	signs := ExtractAll(signPattern, page)
	files := ExtractAll(ajaxmFilePattern, page)
	if len(signs) < 2 || len(files) == 0 {
		return nil, internal.NewParseFailureError("Failed to parse page parameters").
			WithContext("signs", len(signs)).
			WithContext("files", len(files))
	}

	// The first sign belongs to a decoy block
	params := passwordParams{File: files[0], Sign: signs[1]}

	body, err := r.post(ctx, params.fields(password), r.ajaxmURL(params.File), pageURL, nil)
	if err != nil {
		return nil, err
	}
	return decodeFileAjax(body)
}

// submitIframe follows the download iframe of an unprotected page
func (r *Resolver) submitIframe(ctx context.Context, page string) (*fileAjaxResult, error) {
	m := iframePattern.FindStringSubmatch(page)
	if m == nil {
		return nil, internal.NewParseFailureError("Failed to find iframe link")
	}
	iframeURL := r.validator.BaseDomain() + "/" + m[1]

	iframePage, err := r.get(ctx, iframeURL)
	if err != nil {
		return nil, err
	}

	wpSigns := ExtractAll(wpSignPattern, iframePage)
	signs := ExtractAll(ajaxDataPattern, iframePage)
	files := ExtractAll(ajaxmFilePattern, iframePage)
	if len(wpSigns) == 0 || len(signs) == 0 || len(files) < 2 {
		return nil, internal.NewParseFailureError("Failed to parse iframe parameters").WithURL(iframeURL)
	}

	params := iframeParams{File: files[1], WpSign: wpSigns[0], Signs: signs[0]}

	body, err := r.post(ctx, params.fields(), r.ajaxmURL(params.File), iframeURL, nil)
	if err != nil {
		return nil, err
	}
	return decodeFileAjax(body)
}

func (r *Resolver) ajaxmURL(fileID string) string {
	return r.validator.BaseDomain() + "/ajaxm.php?file=" + fileID
}

func decodeFileAjax(body string) (*fileAjaxResult, error) {
	var result fileAjaxResult
	if err := decodeProviderJSON(body, &result); err != nil {
		return nil, internal.NewParseFailureError("Failed to parse download info").WithCause(err)
	}
	return &result, nil
}

// finalizeURL applies the fallback, rename and pid-stripping rules to a resolved URL
func finalizeURL(resolved, fallback, renameSuffix string) string {
	if resolved == "" || !strings.Contains(resolved, "http") {
		resolved = fallback
	} else if renameSuffix != "" {
		if prefix := renamePattern.FindString(resolved); prefix != "" {
			resolved = prefix + renameSuffix
		}
	}

	// pid carries the server's client address
	return pidPattern.ReplaceAllString(resolved, "")
}

// get fetches a page under the per-request timeout
func (r *Resolver) get(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.PageTimeoutDuration())
	defer cancel()
	return r.pages.Get(ctx, pageURL, "")
}

// post submits a form under the per-request timeout
func (r *Resolver) post(ctx context.Context, fields map[string]string, postURL, referer string, extraHeaders map[string]string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.PageTimeoutDuration())
	defer cancel()
	return r.pages.Post(ctx, fields, postURL, referer, "", extraHeaders)
}
