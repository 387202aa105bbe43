package downloader

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Rule is one known page layout for a field. Pattern must have one capture group.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// RuleSet is an ordered list of layouts; the first rule that matches wins.
// Supporting a new page layout means appending a rule.
type RuleSet []Rule

// FirstMatch returns the capture of the first matching rule, or "" when none match
func (rs RuleSet) FirstMatch(text string) string {
	return ExtractFirstMatch(rs.Patterns(), text)
}

// Patterns returns the rules' expressions in order
func (rs RuleSet) Patterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(rs))
	for i, rule := range rs {
		patterns[i] = rule.Pattern
	}
	return patterns
}

// fileNameRules lists the share page layouts the display name has been seen in
var fileNameRules = RuleSet{
	{Name: "mobile-title", Pattern: regexp.MustCompile(`(?s)style="font-size: 30px;text-align: center;padding: 56px 0px 20px 0px;">(.*?)</div>`)},
	{Name: "n_box_3fn", Pattern: regexp.MustCompile(`(?s)<div class="n_box_3fn".*?>(.*?)</div>`)},
	{Name: "script-filename", Pattern: regexp.MustCompile(`(?s)var filename = '(.*?)';`)},
	{Name: "legacy-b-span", Pattern: regexp.MustCompile(`(?s)div class="b"><span>(.*?)</span></div>`)},
}

// fileSizeRules lists the share page layouts the display size has been seen in
var fileSizeRules = RuleSet{
	{Name: "n_filesize", Pattern: regexp.MustCompile(`(?s)<div class="n_filesize".*?>大小：(.*?)</div>`)},
	{Name: "p7-span", Pattern: regexp.MustCompile(`(?s)<span class="p7">文件大小：</span>(.*?)<br>`)},
}

// Page markers and fields
var (
	cancelledMarkers = []string{"File sharing has been cancelled", "文件取消分享了"}

	passwordMarker = "function down_p(){"

	signPattern      = regexp.MustCompile(`'sign':'(.*?)',`)
	ajaxmFilePattern = regexp.MustCompile(`ajaxm\.php\?file=(\d+)`)
	iframePattern    = regexp.MustCompile(`<iframe[^>]*name="[\s\S]*?"[\s]+src="/(.*?)"`)
	wpSignPattern    = regexp.MustCompile(`wp_sign = '(.*?)'`)
	ajaxDataPattern  = regexp.MustCompile(`ajaxdata = '(.*?)'`)

	folderTitlePattern = regexp.MustCompile(`<title>(.*?)</title>`)
	folderAjaxPattern  = regexp.MustCompile(`filemoreajax\.php\?file=(\d+)`)
	folderUIDPattern   = regexp.MustCompile(`'uid'\s*:\s*'(\d+)'`)

	challengeSeedPattern = regexp.MustCompile(`arg1='(.*?)'`)
	verifyFilePattern    = regexp.MustCompile(`'file'\s*:\s*'([^']+)'`)
	verifySignPattern    = regexp.MustCompile(`'sign'\s*:\s*'([^']+)'`)

	renamePattern = regexp.MustCompile(`(.*?)\?fn=(.*?)\.`)
	pidPattern    = regexp.MustCompile(`pid=(.*?)&`)

	identPattern = regexp.MustCompile(`^\w+$`)
)

// ExtractFirstMatch returns the first capture of the first pattern that matches text
func ExtractFirstMatch(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractAll returns the first capture of every non-overlapping match, in page order
func ExtractAll(pattern *regexp.Regexp, text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	values := make([]string, 0, len(matches))
	for _, m := range matches {
		values = append(values, m[1])
	}
	return values
}

// ReferenceOf finds the identifier bound to key in an AJAX data block, as in 'key': ident
func ReferenceOf(key, text string) (string, bool) {
	pattern := regexp.MustCompile(`'` + regexp.QuoteMeta(key) + `'\s*:\s*(\w+)`)
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// VariableValue finds the single-quoted literal assigned to ident, as in var ident = 'value'.
// An empty literal is a valid value.
func VariableValue(ident, text string) (string, bool) {
	if !identPattern.MatchString(ident) {
		return "", false
	}
	pattern := regexp.MustCompile(`var\s+` + regexp.QuoteMeta(ident) + `\s*=\s*'([^']*)'`)
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractIndirect resolves one level of variable indirection for key.
// ok is false when either the reference or the assignment is missing.
func ExtractIndirect(key, text string) (string, bool) {
	ident, ok := ReferenceOf(key, text)
	if !ok {
		return "", false
	}
	return VariableValue(ident, text)
}

// isCancelled reports whether the share page says the share was withdrawn
func isCancelled(page string) bool {
	for _, marker := range cancelledMarkers {
		if strings.Contains(page, marker) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(page), "file sharing cancelled")
}

// displayText turns a captured markup fragment into plain display text
func displayText(fragment string) string {
	return strings.TrimSpace(html.UnescapeString(fragment))
}
