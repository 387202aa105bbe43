package downloader

import (
	"context"
	"strconv"

	"lanzoufetch/internal"
	"lanzoufetch/utils"
)

// folderParams are the listing inputs scraped from a folder page
type folderParams struct {
	Name string
	Fid  string
	UID  string
	T    string
	K    string
}

func (p folderParams) fields(page int, password string) map[string]string {
	return map[string]string{
		"lx":  "2",
		"fid": p.Fid,
		"uid": p.UID,
		"pg":  strconv.Itoa(page),
		"rep": "0",
		"t":   p.T,
		"k":   p.K,
		"up":  "1",
		"ls":  "1",
		"pwd": password,
	}
}

// parseFolderParams extracts the listing inputs from a folder page
func parseFolderParams(page string) (*folderParams, error) {
	params := &folderParams{}
	if m := folderTitlePattern.FindStringSubmatch(page); m != nil {
		params.Name = displayText(m[1])
	}

	m := folderAjaxPattern.FindStringSubmatch(page)
	if m == nil {
		return nil, internal.NewParseFailureError("Failed to parse folder parameters")
	}
	params.Fid = m[1]

	m = folderUIDPattern.FindStringSubmatch(page)
	if m == nil {
		return nil, internal.NewParseFailureError("Failed to parse folder uid")
	}
	params.UID = m[1]

	var ok bool
	if params.T, ok = ExtractIndirect("t", page); !ok {
		return nil, internal.NewParseFailureError("Failed to extract t value")
	}
	if params.K, ok = ExtractIndirect("k", page); !ok {
		return nil, internal.NewParseFailureError("Failed to extract k value")
	}

	return params, nil
}

// resolveFolder fetches one page of a shared folder listing
func (r *Resolver) resolveFolder(ctx context.Context, info *utils.ShareURLInfo, password string, page int) (*internal.FolderListing, error) {
	folderURL := info.NormalizedURL

	folderPage, err := r.get(ctx, folderURL)
	if err != nil {
		return nil, err
	}

	params, err := parseFolderParams(folderPage)
	if err != nil {
		return nil, err
	}

	base := r.validator.BaseDomain()
	body, err := r.post(ctx, params.fields(page, password),
		base+"/filemoreajax.php?file="+params.Fid,
		folderURL,
		map[string]string{
			"X-Requested-With": "XMLHttpRequest",
			"Origin":           base,
		},
	)
	if err != nil {
		return nil, err
	}

	var result folderAjaxResult
	if err := decodeProviderJSON(body, &result); err != nil {
		return nil, internal.NewParseFailureError("Failed to parse folder response").WithCause(err)
	}

	switch result.Zt {
	case ztSuccess:
	case ztWrongPassword:
		return nil, internal.NewUpstreamRejectedError(messageOr(result.Info, "Incorrect password")).
			WithContext("zt", int(result.Zt))
	default:
		return nil, internal.NewUpstreamRejectedError(messageOr(result.Info, "Unknown error")).
			WithContext("zt", int(result.Zt))
	}

	rows, err := decodeFolderRows(result.Text)
	if err != nil {
		return nil, err
	}

	listing := &internal.FolderListing{
		Name:    params.Name,
		Entries: make([]internal.FolderEntry, 0, len(rows)),
	}
	for _, row := range rows {
		if row.ID.String() == sentinelRowID {
			continue
		}
		listing.Entries = append(listing.Entries, internal.FolderEntry{
			Name: row.NameAll,
			Size: row.Size,
			Time: row.Time,
			Icon: row.Icon,
			URL:  r.validator.EntryURL(row.ID.String()),
		})
	}

	internal.LogInfo("Listed folder %s page %d: %d files", info.Identifier, page, len(listing.Entries))
	return listing, nil
}

func decodeFolderRows(raw []byte) ([]folderRow, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var rows []folderRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, internal.NewParseFailureError("Failed to parse folder response").WithCause(err)
	}
	return rows, nil
}
