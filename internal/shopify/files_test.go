package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		shopDomain:  "test.myshopify.com",
		accessToken: "shpat_test",
		endpoint:    srv.URL,
		httpClient:  srv.Client(),
		logger:      zap.NewNop(),
	}
}

type pageRecord struct {
	typename string
	url      string
	alt      string
}

// pagedFilesServer serves the listFiles query from fixed pages keyed by the
// incoming cursor, mimicking Shopify's connection shape.
func pagedFilesServer(t *testing.T, pages [][]pageRecord) (*httptest.Server, *int) {
	t.Helper()
	requests := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))

		var req GraphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		page := 0
		if after, ok := req.Variables["after"].(string); ok && after != "" {
			fmt.Sscanf(after, "cursor-%d", &page)
		}

		edges := make([]map[string]any, 0, len(pages[page]))
		for _, rec := range pages[page] {
			node := map[string]any{
				"__typename": rec.typename,
				"alt":        rec.alt,
				"createdAt":  "2026-08-01T10:00:00Z",
			}
			switch rec.typename {
			case "MediaImage":
				node["image"] = map[string]any{"url": rec.url}
			case "GenericFile":
				node["url"] = rec.url
			case "Video":
				node["originalSource"] = map[string]any{"url": rec.url}
			}
			edges = append(edges, map[string]any{"node": node})
		}

		resp := map[string]any{
			"data": map[string]any{
				"files": map[string]any{
					"pageInfo": map[string]any{
						"hasNextPage": page < len(pages)-1,
						"endCursor":   fmt.Sprintf("cursor-%d", page+1),
					},
					"edges": edges,
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestFiles_PaginationIsCompleteAndDuplicateFree(t *testing.T) {
	pages := [][]pageRecord{
		{{"MediaImage", "https://cdn.src/a.jpg?v=1", ""}, {"MediaImage", "https://cdn.src/b.jpg", "b alt"}},
		{{"GenericFile", "https://cdn.src/c.pdf", ""}, {"Video", "https://cdn.src/d.mp4", ""}},
		{{"MediaImage", "https://cdn.src/e.png", ""}},
	}
	srv, requests := pagedFilesServer(t, pages)
	c := testClient(srv)

	var got []File
	for f, err := range c.Files(context.Background(), 2) {
		require.NoError(t, err)
		got = append(got, f)
	}

	require.Len(t, got, 5, "concatenation of all pages misses nothing")
	assert.Equal(t, 3, *requests, "one request per page")

	names := map[string]int{}
	for _, f := range got {
		names[f.Filename]++
	}
	for name, count := range names {
		assert.Equal(t, 1, count, "duplicate record %s", name)
	}

	assert.Equal(t, "a.jpg", got[0].Filename, "query string is stripped from the filename")
	assert.Equal(t, KindImage, got[0].Kind)
	assert.Equal(t, "a.jpg", got[0].Alt, "alt defaults to the filename")
	assert.Equal(t, "b alt", got[1].Alt)
	assert.Equal(t, KindGenericFile, got[2].Kind)
	assert.Equal(t, KindVideo, got[3].Kind)
}

func TestFiles_RestartableFromBeginning(t *testing.T) {
	pages := [][]pageRecord{{{"MediaImage", "https://cdn.src/a.jpg", ""}}}
	srv, _ := pagedFilesServer(t, pages)
	c := testClient(srv)

	seq := c.Files(context.Background(), 2)
	for range 2 {
		var got []File
		for f, err := range seq {
			require.NoError(t, err)
			got = append(got, f)
		}
		require.Len(t, got, 1)
	}
}

func TestFiles_UnclassifiableRecordIsDropped(t *testing.T) {
	pages := [][]pageRecord{{
		{"MediaImage", "https://cdn.src/a.jpg", ""},
		{"ExternalVideo", "", ""},
		{"GenericFile", "https://cdn.src/b.pdf", ""},
	}}
	srv, _ := pagedFilesServer(t, pages)
	c := testClient(srv)

	var got []File
	for f, err := range c.Files(context.Background(), 10) {
		require.NoError(t, err)
		got = append(got, f)
	}

	require.Len(t, got, 2)
	assert.Equal(t, "a.jpg", got[0].Filename)
	assert.Equal(t, "b.pdf", got[1].Filename)
}

func TestFiles_TransportErrorAbortsListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	c := testClient(srv)

	var files, errs int
	for _, err := range c.Files(context.Background(), 2) {
		if err != nil {
			errs++
			require.ErrorIs(t, err, ErrUnexpectedStatus)
		} else {
			files++
		}
	}
	assert.Zero(t, files)
	assert.Equal(t, 1, errs, "the error is yielded exactly once, then iteration stops")
}

func TestFiles_GraphQLErrorsAbortListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"fields must be selected"}]}`))
	}))
	t.Cleanup(srv.Close)
	c := testClient(srv)

	for _, err := range c.Files(context.Background(), 2) {
		require.ErrorIs(t, err, ErrGraphQL)
	}
}

func TestFindByName(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GraphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotQuery, _ = req.Variables["query"].(string)

		_, _ = w.Write([]byte(`{"data":{"files":{"edges":[
			{"node":{"__typename":"MediaImage","alt":"","createdAt":"2026-08-01T10:00:00Z","image":{"url":"https://cdn.target/Ocean.avif"}}}
		]}}}`))
	}))
	t.Cleanup(srv.Close)
	c := testClient(srv)

	matches, err := c.FindByName(context.Background(), "Ocean")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "filename:Ocean*", gotQuery)
	assert.Equal(t, "https://cdn.target/Ocean.avif", matches[0].SourceURL)
}
