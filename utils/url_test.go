package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanzoufetch/internal"
)

func TestURLValidator_ParseURL(t *testing.T) {
	validator := NewURLValidator("https://www.lanzouf.com")

	tests := []struct {
		name       string
		url        string
		normalized string
		identifier string
		isFolder   bool
	}{
		{
			name:       "single_file",
			url:        "https://www.lanzoux.com/iabc123",
			normalized: "https://www.lanzouf.com/iabc123",
			identifier: "iabc123",
		},
		{
			name:       "mirror_subdomain",
			url:        "https://wwi.lanzoui.com/i7tit9c",
			normalized: "https://www.lanzouf.com/i7tit9c",
			identifier: "i7tit9c",
		},
		{
			name:       "folder",
			url:        "https://www.lanzoux.com/b0raxqelc",
			normalized: "https://www.lanzouf.com/b0raxqelc",
			identifier: "b0raxqelc",
			isFolder:   true,
		},
		{
			name:       "folder_with_query",
			url:        "https://www.lanzoux.com/b0raxqelc?pwd=1234#top",
			normalized: "https://www.lanzouf.com/b0raxqelc?pwd=1234#top",
			identifier: "b0raxqelc",
			isFolder:   true,
		},
		{
			name:       "only_first_marker_splits",
			url:        "http://pan.lanzou.com/tp/x.com/y",
			normalized: "https://www.lanzouf.com/tp/x.com/y",
			identifier: "tp/x.com/y",
		},
		{
			name:       "surrounding_whitespace",
			url:        "  https://www.lanzoux.com/iabc  ",
			normalized: "https://www.lanzouf.com/iabc",
			identifier: "iabc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := validator.ParseURL(tt.url)
			require.NoError(t, err)

			assert.Equal(t, tt.normalized, info.NormalizedURL)
			assert.Equal(t, tt.identifier, info.Identifier)
			assert.Equal(t, tt.isFolder, info.IsFolder)
		})
	}
}

func TestURLValidator_ValidateURL(t *testing.T) {
	validator := NewURLValidator("")

	tests := []struct {
		name    string
		url     string
		message string
	}{
		{"empty", "", "Please provide a URL"},
		{"blank", "   ", "Please provide a URL"},
		{"no_com_marker", "https://www.lanzoux.cn/iabc", "Invalid Lanzou link"},
		{"marker_without_slash", "https://www.lanzoux.com", "Invalid Lanzou link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateURL(tt.url)
			require.Error(t, err)

			le, ok := internal.AsLanzouError(err)
			require.True(t, ok)
			assert.Equal(t, internal.ErrInvalidInput, le.Type)
			assert.Equal(t, tt.message, le.Message)
			assert.Equal(t, 400, le.Code)
		})
	}
}

func TestURLValidator_DefaultAndTrailingSlashDomain(t *testing.T) {
	assert.Equal(t, internal.DefaultBaseDomain, NewURLValidator("").BaseDomain())
	assert.Equal(t, "http://127.0.0.1:8080", NewURLValidator("http://127.0.0.1:8080/").BaseDomain())
}

func TestURLValidator_EntryURL(t *testing.T) {
	validator := NewURLValidator("https://www.lanzouf.com")

	assert.Equal(t, "https://www.lanzouf.com/iAbC", validator.EntryURL("iAbC"))
	assert.Empty(t, validator.EntryURL(""))
}

