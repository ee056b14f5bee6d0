package api

import "time"

// Source describes a JSON endpoint serving elicitation entities
type Source struct {
	BaseURL     string            `json:"base_url"`
	Headers     map[string]string `json:"headers,omitempty"`
	QueryParams map[string]string `json:"query_params,omitempty"`

	// Authentication
	AuthMethod string `json:"auth_method"` // "none", "bearer", "api_key"
	AuthToken  string `json:"auth_token,omitempty"`

	// DataPath is a gjson path to the entity array, e.g. "data.items"; empty means the root
	DataPath string `json:"data_path"`

	// Pagination
	PaginationType string `json:"pagination_type"` // "none", "page", "cursor"
	PageSize       int    `json:"page_size"`
	MaxPages       int    `json:"max_pages"`

	Timeout time.Duration `json:"timeout"`
}

// DefaultSource returns an unauthenticated, single-page source for baseURL
func DefaultSource(baseURL string) Source {
	return Source{
		BaseURL:        baseURL,
		AuthMethod:     "none",
		PaginationType: "none",
		PageSize:       100,
		MaxPages:       50,
		Timeout:        30 * time.Second,
	}
}
