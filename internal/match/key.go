// Package match implements the filename heuristic used for duplicate
// detection across stores. Two files with the same normalized key are
// treated as the same logical asset regardless of extension or resolution
// suffix. This is deliberately approximate: it is not a content hash and can
// produce false positives and negatives.
package match

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Trailing tokens a store or theme pipeline appends to filename variants:
// a resolution suffix like _1024x1024, or one of a fixed quality-word set.
var (
	resolutionSuffix = regexp.MustCompile(`_\d{1,5}x\d{1,5}$`)
	qualitySuffix    = regexp.MustCompile(`(?i)_(hd|fullhd|uhd|4k|480p|720p|1080p|1440p|2160p|small|medium|large)$`)
)

// Key normalizes a filename into its duplicate-detection identity: exactly
// one trailing extension stripped, then at most one trailing resolution or
// quality suffix stripped.
//
//	Key("photo_1024x1024.jpg") == Key("photo.png") == "photo"
func Key(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if m := resolutionSuffix.FindString(base); m != "" {
		return strings.TrimSuffix(base, m)
	}
	if m := qualitySuffix.FindString(base); m != "" {
		return strings.TrimSuffix(base, m)
	}
	return base
}
