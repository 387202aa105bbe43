package downloader

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFirstMatch_Order(t *testing.T) {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`first=(\w+)`),
		regexp.MustCompile(`second=(\w+)`),
	}

	assert.Equal(t, "A", ExtractFirstMatch(patterns, "second=B first=A"))
	assert.Equal(t, "B", ExtractFirstMatch(patterns, "second=B"))
	assert.Equal(t, "", ExtractFirstMatch(patterns, "nothing here"))
	assert.Equal(t, "", ExtractFirstMatch(nil, "first=A"))
}

func TestFileNameRules(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		expected string
	}{
		{
			name:     "mobile_title",
			page:     `<div style="font-size: 30px;text-align: center;padding: 56px 0px 20px 0px;">report.pdf</div>`,
			expected: "report.pdf",
		},
		{
			name:     "n_box_3fn",
			page:     `<div class="n_box_3fn" id="filenajax">setup.exe</div>`,
			expected: "setup.exe",
		},
		{
			name:     "script_variable",
			page:     `<script>var filename = 'movie.mp4';</script>`,
			expected: "movie.mp4",
		},
		{
			name:     "legacy_span",
			page:     `<div class="b"><span>old.rar</span></div>`,
			expected: "old.rar",
		},
		{
			name: "earlier_rule_wins",
			page: `<div class="b"><span>legacy.rar</span></div>
<div class="n_box_3fn">preferred.rar</div>`,
			expected: "preferred.rar",
		},
		{
			name:     "spans_lines",
			page:     "<div class=\"n_box_3fn\">\nmulti.zip</div>",
			expected: "\nmulti.zip",
		},
		{
			name:     "no_layout",
			page:     `<html><body>nothing</body></html>`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fileNameRules.FirstMatch(tt.page))
		})
	}
}

func TestFileSizeRules(t *testing.T) {
	assert.Equal(t, "12.3 M", fileSizeRules.FirstMatch(`<div class="n_filesize" style="x">大小：12.3 M</div>`))
	assert.Equal(t, "4 K", fileSizeRules.FirstMatch(`<span class="p7">文件大小：</span>4 K<br>`))
	assert.Equal(t, "", fileSizeRules.FirstMatch(`<div>no size</div>`))
}

func TestExtractAll(t *testing.T) {
	page := `'sign':'decoy', ... 'sign':'real', ... 'sign':'third',`

	assert.Equal(t, []string{"decoy", "real", "third"}, ExtractAll(signPattern, page))
	assert.Empty(t, ExtractAll(signPattern, "no signs"))
	assert.Equal(t, []string{"11", "22"}, ExtractAll(ajaxmFilePattern, `/ajaxm.php?file=11 /ajaxm.php?file=22`))
}

func TestExtractIndirect(t *testing.T) {
	page := `
		var ib8x2 = '1700000000';
		var _h3kq = '';
		data : { 't':ib8x2, 'k':_h3kq, 'm':missing, 'q':'literal' },
	`

	tests := []struct {
		name  string
		key   string
		value string
		ok    bool
	}{
		{"resolves_reference", "t", "1700000000", true},
		{"empty_literal_is_valid", "k", "", true},
		{"reference_without_assignment", "m", "", false},
		{"literal_is_not_a_reference", "q", "", false},
		{"absent_key", "z", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ExtractIndirect(tt.key, page)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestReferenceOfAndVariableValue(t *testing.T) {
	ident, ok := ReferenceOf("t", `'t' : tvar,`)
	assert.True(t, ok)
	assert.Equal(t, "tvar", ident)

	value, ok := VariableValue("tvar", `var   tvar='x1';`)
	assert.True(t, ok)
	assert.Equal(t, "x1", value)

	_, ok = VariableValue("a.b", `var a.b = 'x';`)
	assert.False(t, ok)
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, isCancelled("<div>File sharing has been cancelled</div>"))
	assert.True(t, isCancelled("<div>文件取消分享了</div>"))
	assert.True(t, isCancelled("<div>FILE SHARING CANCELLED</div>"))
	assert.False(t, isCancelled("<div>a.zip</div>"))
}

func TestDisplayText(t *testing.T) {
	assert.Equal(t, "a & b.zip", displayText("  a &amp; b.zip "))
	assert.Equal(t, "", displayText(""))
}

func TestFinalizeURL(t *testing.T) {
	fallback := "https://develope.lanzoug.com/file/?XYZ"

	tests := []struct {
		name     string
		resolved string
		suffix   string
		expected string
	}{
		{"empty_falls_back", "", "", fallback},
		{"schemeless_falls_back", "cdn.example.com/a.zip", "", fallback},
		{"schemeless_ignores_suffix", "//cdn/a.zip?fn=a.zip", "new", fallback},
		{"plain_url_kept", "https://cdn.example.com/a.zip", "", "https://cdn.example.com/a.zip"},
		{"rename_applies", "https://cdn.example.com/f?fn=a.zip&x=1", "b", "https://cdn.example.com/f?fn=a.b"},
		{"rename_without_fn_pattern", "https://cdn.example.com/a.zip", "b", "https://cdn.example.com/a.zip"},
		{"pid_stripped", "https://cdn.example.com/a.zip?pid=10.0.0.1&t=1", "", "https://cdn.example.com/a.zip?t=1"},
		{"every_pid_stripped", "https://cdn/a?pid=1&pid=2&t=1", "", "https://cdn/a?t=1"},
		{"trailing_pid_kept", "https://cdn/a?t=1&pid=9", "", "https://cdn/a?t=1&pid=9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, finalizeURL(tt.resolved, fallback, tt.suffix))
		})
	}
}

func TestFinalizeURL_PidStrippingIdempotent(t *testing.T) {
	once := finalizeURL("https://cdn/a?pid=1&x=2&pid=3&y=4", "", "")
	twice := finalizeURL(once, "", "")
	assert.Equal(t, once, twice)
	assert.Equal(t, "https://cdn/a?x=2&y=4", once)
}
