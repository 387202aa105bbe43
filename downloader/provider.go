package downloader

import (
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Provider status values carried in the zt field
const (
	ztSuccess       = 1
	ztWrongPassword = 3
)

// looseString accepts a JSON string, number, or bool. The provider sends
// inf and id as numbers on some code paths.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = looseString(str)
		return nil
	}
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		raw = ""
	}
	*s = looseString(raw)
	return nil
}

func (s looseString) String() string {
	return string(s)
}

// looseInt accepts a JSON number or a quoted number; anything else reads as 0
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, err := strconv.Atoi(raw)
	if err != nil {
		*n = 0
		return nil
	}
	*n = looseInt(v)
	return nil
}

// fileAjaxResult is the ajaxm.php answer for both single-file branches
type fileAjaxResult struct {
	Zt  looseInt    `json:"zt"`
	Dom looseString `json:"dom"`
	URL looseString `json:"url"`
	Inf looseString `json:"inf"`
}

// verifyResult is the verification page's ajax.php answer
type verifyResult struct {
	Zt  looseInt    `json:"zt"`
	URL looseString `json:"url"`
	Inf looseString `json:"inf"`
}

// folderAjaxResult is the filemoreajax.php answer. Text is only a row list
// on success; failures may carry a plain string there.
type folderAjaxResult struct {
	Zt   looseInt            `json:"zt"`
	Info looseString         `json:"info"`
	Text jsoniter.RawMessage `json:"text"`
}

// folderRow is one element of a successful folder listing
type folderRow struct {
	ID      looseString `json:"id"`
	NameAll string      `json:"name_all"`
	Size    string      `json:"size"`
	Time    string      `json:"time"`
	Icon    string      `json:"icon"`
}

// sentinelRowID marks the placeholder row the provider appends to listings
const sentinelRowID = "-1"

// decodeProviderJSON parses a provider response body into v
func decodeProviderJSON(body string, v interface{}) error {
	return json.UnmarshalFromString(body, v)
}

// messageOr returns msg, or fallback when the provider sent nothing
func messageOr(msg looseString, fallback string) string {
	if s := strings.TrimSpace(msg.String()); s != "" {
		return s
	}
	return fallback
}
