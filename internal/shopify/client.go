// Package shopify is a thin client for the Shopify Admin GraphQL API,
// covering the file operations the sync tools need: paginated listing,
// filename search, file creation and staged uploads.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/storefront-tools/mediasync/internal/config"
)

type Client struct {
	shopDomain  string
	accessToken string
	endpoint    string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates an Admin API client for one store.
func NewClient(store config.StoreConfig, apiVersion string, logger *zap.Logger) *Client {
	return &Client{
		shopDomain:  store.ShopDomain,
		accessToken: store.AccessToken,
		endpoint:    fmt.Sprintf("https://%s/admin/api/%s/graphql.json", store.ShopDomain, apiVersion),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// ShopDomain returns the store this client talks to.
func (c *Client) ShopDomain() string {
	return c.shopDomain
}

type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Execute posts one GraphQL document to the store's versioned Admin endpoint.
// A non-200 status or a top-level errors list is a transport-class failure;
// mutation userErrors are left for the caller to inspect.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (*GraphQLResponse, error) {
	body, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrUnexpectedStatus, resp.StatusCode, string(respBody))
	}

	var gql GraphQLResponse
	if err := json.Unmarshal(respBody, &gql); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w, body: %s", err, string(respBody))
	}

	if len(gql.Errors) > 0 {
		msgs := make([]string, len(gql.Errors))
		for i, e := range gql.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}

	return &gql, nil
}
