// Package api reads elicitation datasets from JSON HTTP endpoints.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"priorelicit/domain/elicit"
	"priorelicit/internal"
	"priorelicit/ports"
)

// cursorFields are the response fields checked for the next page cursor
var cursorFields = []string{"next_cursor", "cursor", "next", "continuation_token"}

// Reader fetches entities from a configured Source
type Reader struct {
	source     Source
	httpClient *http.Client
	logger     *internal.Logger
}

var _ ports.DatasetSource = (*Reader)(nil)

// NewReader creates a reader for source
func NewReader(source Source, logger *internal.Logger) *Reader {
	if source.MaxPages < 1 {
		source.MaxPages = 1
	}
	return &Reader{
		source:     source,
		httpClient: &http.Client{Timeout: source.Timeout},
		logger:     logger.With("api-reader"),
	}
}

// FetchDataset pulls every page and merges the entities in page order
func (r *Reader) FetchDataset(ctx context.Context) (elicit.Dataset, []string, error) {
	var data elicit.Dataset
	var headers []string
	seen := make(map[string]bool)
	cursor := ""

	for page := 0; page < r.source.MaxPages; page++ {
		body, err := r.fetchPage(ctx, page, cursor)
		if err != nil {
			return nil, nil, err
		}
		entities, names, err := ParseDataset(body, r.source.DataPath)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", page+1, err)
		}
		data = append(data, entities...)
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				headers = append(headers, n)
			}
		}
		r.logger.Debug("page %d: %d entities", page+1, len(entities))

		if !r.hasMorePages(body, len(entities)) {
			break
		}
		cursor = extractNextCursor(body)
	}

	if len(data) == 0 {
		return nil, nil, fmt.Errorf("endpoint %s returned no entities", r.source.BaseURL)
	}
	r.logger.Info("fetched %d entities from %s", len(data), r.source.BaseURL)
	return data, headers, nil
}

func (r *Reader) fetchPage(ctx context.Context, page int, cursor string) ([]byte, error) {
	u, err := r.buildURL(page, cursor)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range r.source.Headers {
		req.Header.Set(k, v)
	}
	switch r.source.AuthMethod {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+r.source.AuthToken)
	case "api_key":
		req.Header.Set("X-API-Key", r.source.AuthToken)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// buildURL adds the configured query parameters and the pagination parameters
func (r *Reader) buildURL(page int, cursor string) (string, error) {
	u, err := url.Parse(r.source.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", r.source.BaseURL, err)
	}
	q := u.Query()
	for k, v := range r.source.QueryParams {
		q.Set(k, v)
	}
	switch r.source.PaginationType {
	case "page":
		q.Set("page", strconv.Itoa(page+1))
		q.Set("per_page", strconv.Itoa(r.source.PageSize))
	case "cursor":
		if cursor != "" {
			q.Set("cursor", cursor)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *Reader) hasMorePages(body []byte, got int) bool {
	switch r.source.PaginationType {
	case "page":
		return got > 0 && got >= r.source.PageSize
	case "cursor":
		return extractNextCursor(body) != ""
	}
	return false
}

func extractNextCursor(body []byte) string {
	for _, field := range cursorFields {
		if c := gjson.GetBytes(body, field); c.Exists() && c.String() != "" {
			return c.String()
		}
	}
	return ""
}

// LoadDataset implements ports.DatasetSource
func (r *Reader) LoadDataset(ctx context.Context) (elicit.Dataset, []string, error) {
	return r.FetchDataset(ctx)
}
