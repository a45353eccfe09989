package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/five82/gallery/internal/gallery"
	mock_gallery "github.com/five82/gallery/internal/gallery/mocks"
	"github.com/five82/gallery/internal/state"
)

func TestMutation_SuccessInvalidatesAndRefetchesFromFirstPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock_gallery.NewMockAPI(ctrl)

	newImage := gallery.NewImage{Title: "cat", Description: "a cat", URL: "http://img/cat.png"}
	created := gallery.Item{ID: "c", Title: "cat", URL: newImage.URL}

	gomock.InOrder(
		api.EXPECT().FetchImages(gomock.Any(), "").Return(itemPage("t1", "a"), nil),
		api.EXPECT().FetchImages(gomock.Any(), "t1").Return(itemPage("", "b"), nil),
		api.EXPECT().CreateImage(gomock.Any(), newImage).Return(created, nil).Times(1),
		api.EXPECT().FetchImages(gomock.Any(), "").Return(itemPage("", "c", "a", "b"), nil),
	)

	store := &state.Store{}
	p := NewPaginator(store, nil)
	p.Register(gallery.ImagesKey, api.FetchImages)
	ctx := context.Background()

	_, err := p.Start(ctx, gallery.ImagesKey)
	require.NoError(t, err)
	_, err = p.LoadMore(ctx, gallery.ImagesKey)
	require.NoError(t, err)

	var notified []gallery.Item
	create := NewMutation(api.CreateImage, store, gallery.ImagesKey).
		OnSuccess(func(item gallery.Item) { notified = append(notified, item) })

	item, err := create.Run(ctx, newImage)
	require.NoError(t, err)
	assert.Equal(t, created, item)
	assert.Equal(t, []gallery.Item{created}, notified)

	q := store.Get(gallery.ImagesKey)
	assert.Equal(t, state.StatusIdle, q.Status)
	assert.True(t, q.Stale)

	fetched, err := p.Start(ctx, gallery.ImagesKey)
	require.NoError(t, err)
	assert.True(t, fetched)

	q = store.Get(gallery.ImagesKey)
	assert.Equal(t, []string{"c", "a", "b"}, itemIDs(q.Items()))
	assert.Len(t, q.Pages, 1, "stale pages must not survive the refetch")
	assert.False(t, q.Stale)
}

func TestMutation_FailureLeavesCacheAlone(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock_gallery.NewMockAPI(ctrl)
	failure := &gallery.ServerError{Method: "POST", Path: "/api/images", StatusCode: 400}
	api.EXPECT().CreateImage(gomock.Any(), gomock.Any()).Return(gallery.Item{}, failure).Times(1)

	store := &state.Store{}
	store.SetPage(gallery.ImagesKey, itemPage("", "a"), false)

	called := false
	create := NewMutation(api.CreateImage, store, gallery.ImagesKey).
		OnSuccess(func(gallery.Item) { called = true })

	_, err := create.Run(context.Background(), gallery.NewImage{Title: "x"})
	var serverErr *gallery.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.False(t, called)

	q := store.Get(gallery.ImagesKey)
	assert.Equal(t, state.StatusSuccess, q.Status)
	assert.False(t, q.Stale)
}

func TestMutation_InvalidatesAfterCallerContextEnds(t *testing.T) {
	store := &state.Store{}
	store.SetPage("a", itemPage("", "1"), false)
	store.SetPage("b", itemPage("", "2"), false)

	ctx, cancel := context.WithCancel(context.Background())
	write := func(ctx context.Context, in string) (string, error) {
		// The form that triggered the write goes away mid-flight.
		cancel()
		return in + "!", nil
	}

	out, err := NewMutation(write, store, "a", "b").Run(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok!", out)
	assert.Equal(t, state.StatusIdle, store.Get("a").Status)
	assert.Equal(t, state.StatusIdle, store.Get("b").Status)
}

func TestMutation_NilInvalidator(t *testing.T) {
	calls := 0
	m := NewMutation(func(ctx context.Context, in int) (int, error) {
		calls++
		if in < 0 {
			return 0, errors.New("negative")
		}
		return in * 2, nil
	}, nil, "ignored").WithLogger(nil)

	out, err := m.Run(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 8, out)

	_, err = m.Run(context.Background(), -1)
	assert.EqualError(t, err, "negative")
	assert.Equal(t, 2, calls, "each Run issues exactly one call")
}
