package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
)

// ProgressTracker renders relay download progress on the terminal
type ProgressTracker struct {
	bar       *pb.ProgressBar
	quiet     bool
	startTime time.Time
	total     int64
	written   int64
	filename  string
	mutex     sync.Mutex
}

// DownloadSummary contains final download statistics
type DownloadSummary struct {
	TotalBytes   int64
	TotalTime    time.Duration
	AverageSpeed float64 // bytes per second
	Filename     string
}

// NewProgressTracker creates a tracker for a download of total bytes.
// A negative total means the size is unknown.
func NewProgressTracker(total int64, quiet bool) *ProgressTracker {
	tracker := &ProgressTracker{
		quiet:     quiet,
		startTime: time.Now(),
		total:     total,
	}

	if !quiet {
		tmpl := `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{speed . }} {{rtime . "ETA %s"}}`
		if total < 0 {
			tmpl = `{{string . "prefix"}}{{counters . }} {{speed . }}`
			total = 0
		}
		bar := pb.ProgressBarTemplate(tmpl).New(0).SetTotal(total)
		bar.SetWriter(os.Stderr)
		bar.Set(pb.Bytes, true)
		bar.Set(pb.SIBytesPrefix, true)
		bar.Set("prefix", "Downloading: ")
		tracker.bar = bar.Start()
	}

	return tracker
}

// Writer wraps w so every write advances the tracker
func (p *ProgressTracker) Writer(w io.Writer) io.Writer {
	return &progressWriter{w: w, tracker: p}
}

type progressWriter struct {
	w       io.Writer
	tracker *ProgressTracker
}

func (pw *progressWriter) Write(b []byte) (int, error) {
	n, err := pw.w.Write(b)
	pw.tracker.Add(int64(n))
	return n, err
}

// Add records n more bytes written
func (p *ProgressTracker) Add(n int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.written += n
	if p.bar != nil {
		p.bar.Add64(n)
	}
}

// SetFilename sets the filename for the download summary
func (p *ProgressTracker) SetFilename(filename string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.filename = filename
}

// Finish completes the progress bar and returns download summary
func (p *ProgressTracker) Finish() *DownloadSummary {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	totalTime := time.Since(p.startTime)
	if p.bar != nil {
		p.bar.Finish()
	}

	var averageSpeed float64
	if totalTime > 0 {
		averageSpeed = float64(p.written) / totalTime.Seconds()
	}

	summary := &DownloadSummary{
		TotalBytes:   p.written,
		TotalTime:    totalTime,
		AverageSpeed: averageSpeed,
		Filename:     p.filename,
	}

	if !p.quiet {
		p.displaySummary(summary)
	}

	return summary
}

// displaySummary prints the download summary statistics
func (p *ProgressTracker) displaySummary(summary *DownloadSummary) {
	fmt.Fprintf(os.Stderr, "\nDownload completed successfully!\n")
	fmt.Fprintf(os.Stderr, "Total size: %s\n", formatBytes(summary.TotalBytes))
	fmt.Fprintf(os.Stderr, "Total time: %v\n", summary.TotalTime.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Average speed: %s/s\n", formatBytes(int64(summary.AverageSpeed)))
	if summary.Filename != "" {
		fmt.Fprintf(os.Stderr, "Saved to: %s\n", summary.Filename)
	}
}

// IsQuiet returns whether the tracker is in quiet mode
func (p *ProgressTracker) IsQuiet() bool {
	return p.quiet
}

// formatBytes formats byte count as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
