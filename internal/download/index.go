package download

import (
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/storefront-tools/mediasync/internal/shopify"
)

// WriteIndex writes the full descriptor index next to the downloaded assets.
func WriteIndex(dir string, entries []IndexEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	path := filepath.Join(dir, IndexFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadIndex loads the index written by a previous download run.
func ReadIndex(dir string) ([]IndexEntry, error) {
	path := filepath.Join(dir, IndexFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return entries, nil
}

// Descriptors turns index entries back into local-only file descriptors for
// the staged-upload flow. Entries that failed to download, or whose file is
// no longer on disk, are skipped. There is no source URL on purpose: these
// descriptors must take the staged-upload path.
func Descriptors(dir string, entries []IndexEntry) iter.Seq2[shopify.File, error] {
	return func(yield func(shopify.File, error) bool) {
		for _, e := range entries {
			if e.Failed {
				continue
			}
			local := filepath.Join(dir, e.LocalName)
			fi, err := os.Stat(local)
			if err != nil {
				continue
			}
			f := shopify.File{
				Filename:  e.Filename,
				Kind:      e.Kind,
				Alt:       e.Alt,
				CreatedAt: e.CreatedAt,
				LocalPath: local,
				Size:      fi.Size(),
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}
