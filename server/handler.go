package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lanzoufetch/downloader"
	"lanzoufetch/internal"
)

// ResolveReq is the query string of GET /
type ResolveReq struct {
	URL      string `form:"url"`
	Password string `form:"pwd"`
	Type     string `form:"type"`
	Rename   string `form:"n"`
	Page     string `form:"pg"`
}

// Handler answers resolution requests
type Handler struct {
	resolver internal.LinkResolver
	relay    *downloader.Relay
}

// NewHandler creates a handler over a resolver and a relay
func NewHandler(resolver internal.LinkResolver, relay *downloader.Relay) *Handler {
	return &Handler{resolver: resolver, relay: relay}
}

// Resolve handles GET /?url=&pwd=&type=&n=&pg=
func (h *Handler) Resolve(c *gin.Context) {
	var req ResolveReq
	if err := c.ShouldBindQuery(&req); err != nil {
		ErrorResp(c, internal.NewInvalidInputError("Invalid query parameters").WithCause(err))
		return
	}

	page, err := parsePage(req.Page)
	if err != nil {
		ErrorResp(c, err)
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), &internal.ShareLink{
		RawURL:       req.URL,
		Password:     req.Password,
		RenameSuffix: req.Rename,
		FolderPage:   page,
	})
	if err != nil {
		ErrorResp(c, err)
		return
	}

	// Folders only have a JSON rendition
	if res.IsFolder() {
		SuccessResp(c, res)
		return
	}

	switch internal.ParseResponseMode(req.Type) {
	case internal.ModeRedirect:
		c.Redirect(http.StatusFound, res.Target.URL)
	case internal.ModeStream:
		h.stream(c, res.Target, req.Rename)
	default:
		SuccessResp(c, res)
	}
}

func (h *Handler) stream(c *gin.Context, target *internal.ResolvedTarget, rename string) {
	filename := rename
	if filename == "" {
		filename = target.Name
	}
	if filename == "" {
		filename = "download"
	}

	d, err := h.relay.Stream(c.Request.Context(), target.URL, filename)
	if err != nil {
		ErrorResp(c, err)
		return
	}

	for name, values := range d.Header() {
		for _, v := range values {
			c.Writer.Header().Add(name, v)
		}
	}
	c.Status(http.StatusOK)

	n, err := d.WriteTo(c.Writer)
	if err != nil {
		// Headers are already sent; the client sees a truncated body
		if internal.IsType(err, internal.ErrStream) {
			internal.LogWarn("[%s] relay of %s failed after %d bytes: %v", RequestID(c), filename, n, err)
		} else {
			internal.LogDebug("[%s] client left during relay of %s after %d bytes", RequestID(c), filename, n)
		}
		return
	}
	internal.LogDebug("[%s] relayed %s (%d bytes)", RequestID(c), filename, n)
}

// parsePage reads the folder page number; absent means the first page
func parsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, internal.NewInvalidInputError("Page number must be at least 1")
	}
	return page, nil
}
