package internal

// ShareLink is one caller request to resolve a provider share URL
type ShareLink struct {
	RawURL       string
	Password     string
	RenameSuffix string
	FolderPage   int // 1-based; only used by folder links
}

// ResolvedTarget is the outcome of a single-file resolution.
// URL is empty on failure.
type ResolvedTarget struct {
	URL  string `json:"downUrl"`
	Name string `json:"name"`
	Size string `json:"filesize"`
}

// FolderEntry is one file row of a folder listing
type FolderEntry struct {
	Name string `json:"name"`
	Size string `json:"size"`
	Time string `json:"time"`
	Icon string `json:"icon"`
	URL  string `json:"url"`
}

// FolderListing is one page of a shared folder
type FolderListing struct {
	Name    string        `json:"name"`
	Entries []FolderEntry `json:"files"`
}

// Resolution holds exactly one of Target or Folder
type Resolution struct {
	Target *ResolvedTarget
	Folder *FolderListing
}

// IsFolder reports whether the resolution is a folder listing
func (r *Resolution) IsFolder() bool {
	return r != nil && r.Folder != nil
}

// ResponseMode selects how the API answers a single-file resolution
type ResponseMode string

const (
	ModeJSON     ResponseMode = "json"
	ModeRedirect ResponseMode = "redirect"
	ModeStream   ResponseMode = "stream"
)

// ParseResponseMode maps the public "type" selector onto a ResponseMode.
// "down" and "file" are the historical spellings.
func ParseResponseMode(s string) ResponseMode {
	switch s {
	case "down", "redirect":
		return ModeRedirect
	case "file", "stream":
		return ModeStream
	default:
		return ModeJSON
	}
}
