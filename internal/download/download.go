// Package download materializes a store's file catalog on local disk: every
// asset fetched into one directory, plus a JSON index of descriptors written
// after the batch finishes. The directory plus index is the handoff artifact
// consumed by the staged-upload flow.
package download

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront-tools/mediasync/internal/shopify"
)

// IndexFilename is the sibling index written next to the downloaded assets.
const IndexFilename = "files.json"

// IndexEntry is one descriptor in the index. Failed downloads are recorded
// too, so a later upload run knows what is genuinely on disk.
type IndexEntry struct {
	ID        string       `json:"id"`
	Filename  string       `json:"filename"`
	LocalName string       `json:"localName"`
	URL       string       `json:"url"`
	Kind      shopify.Kind `json:"kind"`
	Alt       string       `json:"alt"`
	CreatedAt time.Time    `json:"createdAt"`
	Size      int64        `json:"size"`
	Failed    bool         `json:"failed,omitempty"`
	Error     string       `json:"error,omitempty"`
}

type Summary struct {
	Succeeded  int
	Failed     int
	TotalBytes int64
}

type Downloader struct {
	files   iter.Seq2[shopify.File, error]
	fetcher *http.Client
	out     io.Writer
	logger  *zap.Logger
}

func NewDownloader(files iter.Seq2[shopify.File, error], out io.Writer, logger *zap.Logger) *Downloader {
	return &Downloader{
		files:   files,
		fetcher: &http.Client{Timeout: 10 * time.Minute},
		out:     out,
		logger:  logger,
	}
}

// Run fetches every listed asset into dir, sequentially, one at a time.
// Per-file failures are recorded and skipped; a listing failure aborts the
// run. The index is written in both cases, covering everything attempted.
func (d *Downloader) Run(ctx context.Context, dir string) (Summary, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	summary := Summary{}
	var entries []IndexEntry
	taken := map[string]bool{}
	n := 0

	for f, err := range d.files {
		if err != nil {
			d.finish(dir, entries, summary)
			return summary, err
		}

		n++
		localName := uniqueName(taken, f.Filename)
		entry := IndexEntry{
			ID:        uuid.NewString(),
			Filename:  f.Filename,
			LocalName: localName,
			URL:       f.SourceURL,
			Kind:      f.Kind,
			Alt:       f.Alt,
			CreatedAt: f.CreatedAt,
		}

		fmt.Fprintf(d.out, "[%d] %s ", n, f.Filename)

		size, err := d.fetch(ctx, f.SourceURL, filepath.Join(dir, localName))
		if err != nil {
			summary.Failed++
			entry.Failed = true
			entry.Error = err.Error()
			fmt.Fprintf(d.out, "FAILED: %v\n", err)
		} else {
			summary.Succeeded++
			summary.TotalBytes += size
			entry.Size = size
			fmt.Fprintf(d.out, "saved %s (%s)\n", localName, humanize.Bytes(uint64(size)))
		}

		entries = append(entries, entry)
	}

	d.finish(dir, entries, summary)
	return summary, nil
}

func (d *Downloader) finish(dir string, entries []IndexEntry, summary Summary) {
	if err := WriteIndex(dir, entries); err != nil {
		d.logger.Error("writing index failed", zap.Error(err))
	}
	fmt.Fprintf(d.out, "\nDone: %d downloaded (%s), %d failed\n",
		summary.Succeeded, humanize.Bytes(uint64(summary.TotalBytes)), summary.Failed)
}

func (d *Downloader) fetch(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := d.fetcher.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s", shopify.ErrUnexpectedStatus, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}

	size, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return 0, err
	}
	return size, nil
}

// uniqueName keeps colliding filenames apart by inserting _2, _3, ... before
// the extension.
func uniqueName(taken map[string]bool, filename string) string {
	name := filename
	for i := 2; taken[name]; i++ {
		ext := filepath.Ext(filename)
		name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(filename, ext), i, ext)
	}
	taken[name] = true
	return name
}
