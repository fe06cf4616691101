package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"
)

const listFilesQuery = `
query listFiles($first: Int!, $after: String) {
  files(first: $first, after: $after) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        __typename
        alt
        createdAt
        ... on MediaImage {
          image {
            url
          }
        }
        ... on GenericFile {
          url
        }
        ... on Video {
          originalSource {
            url
          }
        }
      }
    }
  }
}
`

const searchFilesQuery = `
query searchFiles($query: String!) {
  files(first: 10, query: $query) {
    edges {
      node {
        __typename
        alt
        createdAt
        ... on MediaImage {
          image {
            url
          }
        }
        ... on GenericFile {
          url
        }
        ... on Video {
          originalSource {
            url
          }
        }
      }
    }
  }
}
`

type fileNode struct {
	Typename  string    `json:"__typename"`
	Alt       string    `json:"alt"`
	CreatedAt time.Time `json:"createdAt"`

	// Union payloads. Exactly one is expected to be present; a node with
	// none of them is not a syncable asset and is dropped.
	Image *struct {
		URL string `json:"url"`
	} `json:"image"`
	URL            string `json:"url"`
	OriginalSource *struct {
		URL string `json:"url"`
	} `json:"originalSource"`
}

type filesConnection struct {
	Files struct {
		PageInfo struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
		Edges []struct {
			Node fileNode `json:"node"`
		} `json:"edges"`
	} `json:"files"`
}

// descriptor classifies a raw node into exactly one Kind, checking the image
// payload first, then the generic-file payload, then the video payload.
// ok is false for nodes carrying none of the three.
func (n fileNode) descriptor() (File, bool) {
	f := File{Alt: n.Alt, CreatedAt: n.CreatedAt}

	switch {
	case n.Image != nil && n.Image.URL != "":
		f.Kind = KindImage
		f.SourceURL = n.Image.URL
	case n.URL != "":
		f.Kind = KindGenericFile
		f.SourceURL = n.URL
	case n.OriginalSource != nil && n.OriginalSource.URL != "":
		f.Kind = KindVideo
		f.SourceURL = n.OriginalSource.URL
	default:
		return File{}, false
	}

	f.Filename = FilenameFromURL(f.SourceURL)
	if f.Alt == "" {
		f.Alt = f.Filename
	}
	return f, true
}

// Files returns a lazy sequence over the store's whole file catalog, one
// Admin API request per page. The sequence is finite and restartable from
// the beginning only; there is no durable cursor. Any transport or decode
// error ends the iteration by yielding that error once.
func (c *Client) Files(ctx context.Context, pageSize int) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		after := ""
		for page := 1; ; page++ {
			variables := map[string]any{"first": pageSize}
			if after != "" {
				variables["after"] = after
			}

			resp, err := c.Execute(ctx, listFilesQuery, variables)
			if err != nil {
				yield(File{}, fmt.Errorf("listing files (page %d): %w", page, err))
				return
			}

			var conn filesConnection
			if err := json.Unmarshal(resp.Data, &conn); err != nil {
				yield(File{}, fmt.Errorf("decoding files page %d: %w", page, err))
				return
			}

			c.logger.Debug("fetched files page",
				zap.Int("page", page), zap.Int("records", len(conn.Files.Edges)))

			for _, edge := range conn.Files.Edges {
				f, ok := edge.Node.descriptor()
				if !ok {
					continue
				}
				if !yield(f, nil) {
					return
				}
			}

			if !conn.Files.PageInfo.HasNextPage {
				return
			}
			after = conn.Files.PageInfo.EndCursor
		}
	}
}

// FindByName runs a filename-prefix search against the store and returns the
// matching descriptors. The match is a heuristic: callers search with a
// normalized key, not an exact filename.
func (c *Client) FindByName(ctx context.Context, key string) ([]File, error) {
	variables := map[string]any{"query": fmt.Sprintf("filename:%s*", key)}

	resp, err := c.Execute(ctx, searchFilesQuery, variables)
	if err != nil {
		return nil, fmt.Errorf("searching files by name %q: %w", key, err)
	}

	var conn filesConnection
	if err := json.Unmarshal(resp.Data, &conn); err != nil {
		return nil, fmt.Errorf("decoding file search result: %w", err)
	}

	var out []File
	for _, edge := range conn.Files.Edges {
		if f, ok := edge.Node.descriptor(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}
