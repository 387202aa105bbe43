package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"lanzoufetch/internal"
	"lanzoufetch/utils"
)

const (
	// relayChunkSize is the copy buffer size between upstream and consumer
	relayChunkSize = 64 * 1024

	// maxErrorDrain bounds how much of an error body is read before closing
	maxErrorDrain = 1 << 20
)

// Relay streams resolved files to callers, independent of any resolution session
type Relay struct {
	client  *utils.HTTPClient
	timeout time.Duration
}

// NewRelay creates a relay whose connect-and-stream lifetime is bounded by the config
func NewRelay(client *utils.HTTPClient, config *internal.Config) *Relay {
	return &Relay{
		client:  client,
		timeout: config.RelayTimeoutDuration(),
	}
}

// Download is an open upstream stream. It must be consumed with WriteTo or
// released with Close; release runs exactly once either way.
type Download struct {
	Filename      string
	ContentType   string
	ContentLength int64 // -1 when unknown

	ctx      context.Context
	stream   *utils.StreamResponse
	cancel   context.CancelFunc
	once     sync.Once
	releases int32
}

// Stream opens url for relaying under filename
func (r *Relay) Stream(ctx context.Context, url, filename string) (*Download, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)

	stream, err := r.client.OpenStream(ctx, url, map[string]string{"Accept": "*/*"}, r.timeout)
	if err != nil {
		cancel()
		return nil, err
	}

	d := &Download{
		Filename:      filename,
		ContentType:   stream.Header.Get("Content-Type"),
		ContentLength: stream.ContentLength,
		ctx:           ctx,
		stream:        stream,
		cancel:        cancel,
	}
	if d.ContentType == "" {
		d.ContentType = "application/octet-stream"
	}

	if stream.StatusCode >= http.StatusBadRequest {
		io.CopyN(io.Discard, stream.Body, maxErrorDrain)
		d.release()
		return nil, internal.NewUpstreamTransportError(stream.StatusCode, "Upstream download failed", nil).WithURL(url)
	}

	internal.LogDebug("Relaying %s (%d bytes)", filename, d.ContentLength)
	return d, nil
}

// Header returns the response headers a consumer should send before the body
func (d *Download) Header() http.Header {
	h := http.Header{}
	h.Set("Content-Type", d.ContentType)
	h.Set("Content-Disposition", ContentDisposition(d.Filename))
	if d.ContentLength >= 0 {
		h.Set("Content-Length", strconv.FormatInt(d.ContentLength, 10))
	}
	return h
}

// WriteTo copies the upstream body to w in fixed-size chunks, then releases
// the stream. It stops at the first read or write failure.
func (d *Download) WriteTo(w io.Writer) (int64, error) {
	defer d.release()

	buf := make([]byte, relayChunkSize)
	var written int64
	for {
		n, rerr := d.stream.Body.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, internal.NewStreamError(werr)
			}
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			if errors.Is(d.ctx.Err(), context.Canceled) {
				return written, d.ctx.Err()
			}
			return written, internal.NewStreamError(rerr)
		}
	}
}

// Close releases the stream without reading the rest of it
func (d *Download) Close() error {
	d.release()
	return nil
}

func (d *Download) release() {
	d.once.Do(func() {
		atomic.AddInt32(&d.releases, 1)
		d.stream.Body.Close()
		d.stream.CloseIdleConnections()
		d.cancel()
	})
}

// ContentDisposition builds an attachment header value for filename
func ContentDisposition(filename string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(filename)
	return fmt.Sprintf(`attachment; filename="%s"`, escaped)
}

// SaveOptions control a relay download to disk
type SaveOptions struct {
	Limiter internal.RateLimiter // nil means unlimited
	Quiet   bool
}

// SaveToFile relays url into outputPath through a .part file, renamed once complete
func (r *Relay) SaveToFile(ctx context.Context, url, outputPath string, opts SaveOptions) (*utils.DownloadSummary, error) {
	d, err := r.Stream(ctx, url, outputPath)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	fileOps := utils.NewFileOperations()
	file, err := fileOps.CreatePartialFile(outputPath)
	if err != nil {
		return nil, err
	}

	tracker := utils.NewProgressTracker(d.ContentLength, opts.Quiet)
	tracker.SetFilename(outputPath)

	w := utils.NewThrottledWriter(ctx, tracker.Writer(file), opts.Limiter)
	if _, err := d.WriteTo(w); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, internal.NewStreamError(err)
	}

	if err := fileOps.AtomicRename(fileOps.PartialPath(outputPath), outputPath); err != nil {
		return nil, fmt.Errorf("failed to finalize download: %w", err)
	}

	return tracker.Finish(), nil
}
