package api

import "github.com/postboard-dev/postboard/shared/domain"

// Request DTOs shared by the backend handlers and the client

type CreatePostRequest struct {
	Title    string `json:"title" validate:"required,max=100"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"required"`
	// Tags is a comma delimited list, split by the server.
	Tags string `json:"tags,omitempty"`
}

// UpdatePostRequest fields are optional; nil leaves the stored value untouched.
type UpdatePostRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Content  *string `json:"content,omitempty" validate:"omitempty,min=1"`
	Category *string `json:"category,omitempty" validate:"omitempty,min=1"`
	Tags     *string `json:"tags,omitempty"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// ListQuery mirrors the query string accepted by GET /posts.
type ListQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// Response DTOs

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type ListPostsResponse struct {
	Items      []domain.Post `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
