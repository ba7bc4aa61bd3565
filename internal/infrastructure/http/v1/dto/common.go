// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Error Responses ---

// MessageResponse is the body of forbidden and server errors.
type MessageResponse struct {
	Message string `json:"Message"`
}

// ErrorResponse is the body of other application errors.
type ErrorResponse struct {
	Message string         `json:"Message"`
	Code    string         `json:"Code"`
	Details map[string]any `json:"Details,omitempty"`
}

// ProblemDetails is an RFC 7807 problem document.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}
