package response

type StandardApiResponse struct {
	Status     string      `json:"status"`           // "success" or "error"
	StatusCode int         `json:"status_code"`      // HTTP status code
	Message    string      `json:"message"`          // Human-readable message
	Data       interface{} `json:"data,omitempty"`   // Payload for success
	Errors     interface{} `json:"errors,omitempty"` // Validation or error details
}

// Pagination is attached to list payloads
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}
