package shopify

import (
	"net/url"
	"path"
	"strings"
	"time"
)

// Kind mirrors Shopify's FileContentType enum values.
type Kind string

const (
	KindImage       Kind = "IMAGE"
	KindGenericFile Kind = "FILE"
	KindVideo       Kind = "VIDEO"
)

// File is the normalized descriptor of one remote media/document asset.
// Descriptors are transient: built from one page of results, consumed by a
// materialization attempt, then discarded.
type File struct {
	// SourceURL is the asset's public URL on the source store at
	// enumeration time. Required for direct-reference materialization.
	SourceURL string
	// Filename is the last path segment of SourceURL with the query
	// stripped. Not guaranteed unique or stable across re-uploads.
	Filename string
	Kind     Kind
	// Alt falls back to Filename when the record carries no alt text.
	Alt       string
	CreatedAt time.Time

	// LocalPath and Size are set only by the staged-upload flow, for
	// descriptors read back from a download directory.
	LocalPath string
	Size      int64
}

// Parameter is one presigned form field of a staged upload target.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StagedTarget is a single-use, server-issued upload destination. Parameters
// must precede the file part in the multipart body in exactly this order:
// they are presigned-request fields and reordering invalidates the signature.
type StagedTarget struct {
	UploadURL   string      `json:"url"`
	ResourceURL string      `json:"resourceUrl"`
	Parameters  []Parameter `json:"parameters"`
}

// FilenameFromURL derives a descriptor filename from the last path segment
// of rawURL, with any query string stripped.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
			rawURL = rawURL[:i]
		}
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}
