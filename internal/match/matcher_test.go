package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-tools/mediasync/internal/shopify"
)

type fakeFinder struct {
	byKey    map[string][]shopify.File
	err      error
	lastKeys []string
}

func (f *fakeFinder) FindByName(_ context.Context, key string) ([]shopify.File, error) {
	f.lastKeys = append(f.lastKeys, key)
	if f.err != nil {
		return nil, f.err
	}
	return f.byKey[key], nil
}

func TestFilenameMatcher_Exists(t *testing.T) {
	finder := &fakeFinder{byKey: map[string][]shopify.File{
		"photo": {{Filename: "photo.jpg", SourceURL: "https://cdn.example/photo.jpg"}},
	}}
	m := NewFilenameMatcher(finder)

	ok, err := m.Exists(context.Background(), "photo_1024x1024.png")
	require.NoError(t, err)
	assert.True(t, ok, "resolution variant must match the stored original")
	assert.Equal(t, []string{"photo"}, finder.lastKeys, "search must use the normalized key")

	ok, err = m.Exists(context.Background(), "other.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilenameMatcher_Resolve(t *testing.T) {
	finder := &fakeFinder{byKey: map[string][]shopify.File{
		"Ocean": {
			{Filename: "Ocean.avif", SourceURL: "https://cdn.example/Ocean.avif"},
			{Filename: "Ocean_hd.avif", SourceURL: "https://cdn.example/Ocean_hd.avif"},
		},
	}}
	m := NewFilenameMatcher(finder)

	url, err := m.Resolve(context.Background(), "Ocean.avif")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/Ocean.avif", url, "first match wins")

	_, err = m.Resolve(context.Background(), "missing.png")
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestFilenameMatcher_PropagatesLookupError(t *testing.T) {
	boom := errors.New("boom")
	m := NewFilenameMatcher(&fakeFinder{err: boom})

	_, err := m.Exists(context.Background(), "a.jpg")
	require.ErrorIs(t, err, boom)

	_, err = m.Resolve(context.Background(), "a.jpg")
	require.ErrorIs(t, err, boom)
}
