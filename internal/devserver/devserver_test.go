package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/gallery/internal/form"
	"github.com/five82/gallery/internal/gallery"
	"github.com/five82/gallery/internal/query"
	"github.com/five82/gallery/internal/state"
	"github.com/five82/gallery/internal/upload"
)

func seeded(t *testing.T, n int, pageSize int) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Options{PageSize: pageSize})
	for i := 1; i <= n; i++ {
		s.Seed(gallery.NewImage{Title: fmt.Sprintf("img-%02d", i), Description: "d", URL: fmt.Sprintf("http://x/%d.png", i)})
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getList(t *testing.T, base, after string) (int, gallery.ImageListResponse) {
	t.Helper()
	target := base + "/api/images"
	if after != "" {
		target += "?after=" + after
	}
	resp, err := http.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body gallery.ImageListResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestListImages_PagesNewestFirst(t *testing.T) {
	_, ts := seeded(t, 8, 6)

	code, first := getList(t, ts.URL, "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, first.Data, 6)
	require.NotNil(t, first.After)
	assert.Equal(t, "img-08", first.Data[0].Title)

	code, second := getList(t, ts.URL, *first.After)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, second.Data, 2)
	assert.Nil(t, second.After)
	assert.Equal(t, *first.After, second.Data[0].ID)
	assert.Equal(t, "img-01", second.Data[1].Title)
}

func TestListImages_EmptyGallery(t *testing.T) {
	_, ts := seeded(t, 0, 6)

	code, body := getList(t, ts.URL, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body.Data)
	assert.NotNil(t, body.Data)
	assert.Nil(t, body.After)
}

func TestListImages_UnknownCursor(t *testing.T) {
	_, ts := seeded(t, 3, 6)

	code, _ := getList(t, ts.URL, "nope")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCreateImage_RequiresFields(t *testing.T) {
	_, ts := seeded(t, 0, 6)

	resp, err := http.Post(ts.URL+"/api/images", "application/json", bytes.NewBufferString(`{"title":"abc"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateImage_ReturnsItem(t *testing.T) {
	_, ts := seeded(t, 0, 6)

	resp, err := http.Post(ts.URL+"/api/images", "application/json",
		bytes.NewBufferString(`{"title":"Sunset","description":"Beach","url":"http://x/a.png"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item gallery.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Sunset", item.Title)
	assert.Positive(t, item.TS)
}

func TestUpload_StoresAndServesBlob(t *testing.T) {
	_, ts := seeded(t, 0, 6)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", "dot.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := http.Post(ts.URL+"/api/upload", w.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Contains(t, out.Data.URL, ts.URL+"/uploads/")

	blob, err := http.Get(out.Data.URL)
	require.NoError(t, err)
	defer blob.Body.Close()
	data, err := io.ReadAll(blob.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, blob.StatusCode)
	assert.Equal(t, "\x89PNG\r\n\x1a\nfake", string(data))
}

func TestUpload_MissingField(t *testing.T) {
	_, ts := seeded(t, 0, 6)

	resp, err := http.Post(ts.URL+"/api/upload", "multipart/form-data; boundary=x", bytes.NewBufferString("--x--\r\n"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBlob_NotFound(t *testing.T) {
	_, ts := seeded(t, 0, 6)

	resp, err := http.Get(ts.URL + "/uploads/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// The full client stack against the dev backend: list, load more, then
// upload and create, which must refetch from the first page.
func TestEndToEnd_PaginateThenSubmit(t *testing.T) {
	_, ts := seeded(t, 7, 3)
	ctx := context.Background()

	client, err := gallery.NewClient(ts.URL)
	require.NoError(t, err)

	store := &state.Store{}
	pager := query.NewPaginator(store, nil)
	pager.Register(gallery.ImagesKey, client.FetchImages)

	items, err := pager.LoadAll(ctx, gallery.ImagesKey, 0)
	require.NoError(t, err)
	require.Len(t, items, 7)
	assert.Len(t, store.Get(gallery.ImagesKey).Pages, 3)
	assert.False(t, pager.HasMore(gallery.ImagesKey))

	storer, err := upload.NewHTTPStorer(ts.URL+"/api/upload", "")
	require.NoError(t, err)
	create := query.NewMutation(client.CreateImage, store, gallery.ImagesKey)
	submitter := form.NewSubmitter(form.DefaultRules(), storer, create)

	path := filepath.Join(t.TempDir(), "new.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))
	file, err := upload.FromPath(path)
	require.NoError(t, err)

	created, err := submitter.Submit(ctx, form.Input{Image: &file, Title: "Fresh", Description: "new one"})
	require.NoError(t, err)
	assert.Equal(t, state.StatusIdle, store.Get(gallery.ImagesKey).Status)
	assert.True(t, store.Get(gallery.ImagesKey).Stale)

	fetched, err := pager.Start(ctx, gallery.ImagesKey)
	require.NoError(t, err)
	require.True(t, fetched)

	q := store.Get(gallery.ImagesKey)
	require.Len(t, q.Pages, 1)
	assert.Equal(t, created.ID, q.Items()[0].ID)
	assert.Contains(t, q.Items()[0].URL, "/uploads/")
}
