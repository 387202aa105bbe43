package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_QuietWriter(t *testing.T) {
	tracker := NewProgressTracker(10, true)
	assert.True(t, tracker.IsQuiet())

	var buf bytes.Buffer
	w := tracker.Writer(&buf)
	w.Write([]byte("hello"))
	w.Write([]byte("world"))

	tracker.SetFilename("a.zip")
	summary := tracker.Finish()

	assert.Equal(t, "helloworld", buf.String())
	assert.Equal(t, int64(10), summary.TotalBytes)
	assert.Equal(t, "a.zip", summary.Filename)
}

func TestProgressTracker_UnknownSize(t *testing.T) {
	tracker := NewProgressTracker(-1, false)
	tracker.Add(4096)

	summary := tracker.Finish()
	assert.Equal(t, int64(4096), summary.TotalBytes)
	assert.GreaterOrEqual(t, summary.AverageSpeed, 0.0)
}

func TestProgressTracker_KnownSizeBar(t *testing.T) {
	tracker := NewProgressTracker(1<<20, false)
	if assert.NotNil(t, tracker.bar) {
		assert.Equal(t, int64(1<<20), tracker.bar.Total())
	}

	tracker.Writer(&bytes.Buffer{}).Write(make([]byte, 2048))
	assert.Equal(t, int64(2048), tracker.bar.Current())

	summary := tracker.Finish()
	assert.Equal(t, int64(2048), summary.TotalBytes)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatBytes(tt.input))
		})
	}
}
