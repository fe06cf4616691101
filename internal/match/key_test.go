package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", "photo"},
		{"photo.png", "photo"},
		{"photo_1024x1024.jpg", "photo"},
		{"photo_2048x2048.webp", "photo"},
		{"clip_hd.mp4", "clip"},
		{"clip_1080p.mov", "clip"},
		{"clip_4k.mp4", "clip"},
		{"banner_large.avif", "banner"},
		// only one suffix is stripped
		{"photo_small_1024x1024.jpg", "photo_small"},
		// underscores that are not a known suffix stay
		{"hero_image.jpg", "hero_image"},
		{"price_list_2024.pdf", "price_list_2024"},
		// only one extension is stripped
		{"archive.tar.gz", "archive.tar"},
		// no extension at all
		{"README", "README"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.filename))
		})
	}
}

func TestKey_VariantsShareIdentity(t *testing.T) {
	assert.Equal(t, Key("photo_1024x1024.jpg"), Key("photo.png"))
	assert.Equal(t, "photo", Key("photo_1024x1024.jpg"))
}
