package model

// APIResponse is the envelope every endpoint answers with. Message and
// Object serialize as explicit nulls when absent, so clients always see all
// three fields.
type APIResponse struct {
	Success bool    `json:"success"`
	Message *string `json:"message"`
	Object  any     `json:"object"`
}

func OK(message string, object any) APIResponse {
	resp := APIResponse{Success: true, Object: object}
	if message != "" {
		resp.Message = &message
	}
	return resp
}

func Fail(message string) APIResponse {
	return APIResponse{Success: false, Message: &message}
}

// Page wraps a filtered listing with pagination metadata.
type Page[T any] struct {
	Items           []T   `json:"items"`
	TotalItems      int64 `json:"total_items"`
	TotalPages      int   `json:"total_pages"`
	HasNextPage     bool  `json:"has_next_page"`
	HasPreviousPage bool  `json:"has_previous_page"`
}

func NewPage[T any](items []T, total int64, page int, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	if limit <= 0 {
		limit = int(total)
	}

	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return Page[T]{
		Items:           items,
		TotalItems:      total,
		TotalPages:      totalPages,
		HasNextPage:     totalPages > page+1,
		HasPreviousPage: page > 0,
	}
}
