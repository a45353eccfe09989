package gallery

import "time"

// ImagesKey is the query key for the image list.
const ImagesKey = "images"

// Item mirrors an image record returned by /api/images.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	TS          int64  `json:"ts"`
}

// CreatedAt converts the backend timestamp (microseconds since the epoch).
func (i Item) CreatedAt() time.Time {
	if i.TS <= 0 {
		return time.Time{}
	}
	return time.UnixMicro(i.TS)
}

// Page is one slice of the image list. An empty Cursor marks the last page.
type Page struct {
	Items  []Item
	Cursor string
}

// HasMore reports whether another page can be requested after this one.
func (p Page) HasMore() bool {
	return p.Cursor != ""
}

// NewImage is the body of POST /api/images.
type NewImage struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// ImageListResponse mirrors the /api/images payload.
type ImageListResponse struct {
	Data  []Item  `json:"data"`
	After *string `json:"after"`
}

// Page converts the wire payload, folding a null cursor into "".
func (r ImageListResponse) Page() Page {
	page := Page{Items: r.Data}
	if r.After != nil {
		page.Cursor = *r.After
	}
	return page
}
