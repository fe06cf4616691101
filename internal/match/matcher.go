package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront-tools/mediasync/internal/shopify"
)

var ErrNoMatch = errors.New("no matching file on target store")

// Finder is the lookup side of the target store's catalog, satisfied by
// *shopify.Client.
type Finder interface {
	FindByName(ctx context.Context, key string) ([]shopify.File, error)
}

// Matcher decides whether a candidate filename already exists on the target
// store, and resolves it to a delivery URL. The default implementation
// matches by normalized filename; a stricter content-hash strategy could be
// swapped in without touching the orchestrator.
type Matcher interface {
	Exists(ctx context.Context, filename string) (bool, error)
	Resolve(ctx context.Context, filename string) (string, error)
}

// FilenameMatcher is the default Matcher: prefix search by Key(filename).
type FilenameMatcher struct {
	finder Finder
}

func NewFilenameMatcher(finder Finder) *FilenameMatcher {
	return &FilenameMatcher{finder: finder}
}

// Exists reports whether at least one file on the target store matches the
// candidate's key. No locking: two concurrent syncs could both see false and
// create duplicates, which is acceptable for a sequential scheduled job.
func (m *FilenameMatcher) Exists(ctx context.Context, filename string) (bool, error) {
	matches, err := m.finder.FindByName(ctx, Key(filename))
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// Resolve returns the delivery URL of the first match for the candidate's
// key, or ErrNoMatch.
func (m *FilenameMatcher) Resolve(ctx context.Context, filename string) (string, error) {
	matches, err := m.finder.FindByName(ctx, Key(filename))
	if err != nil {
		return "", err
	}
	for _, f := range matches {
		if f.SourceURL != "" {
			return f.SourceURL, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoMatch, filename)
}
