package dto

import (
	"bytes"
	"encoding/json"
	"time"
)

// TodoRequest is the JSON body for POST, PUT and PATCH /todos.
// Which fields are required depends on the operation; see ValidateCreate,
// ValidateReplace and ValidatePatch.
type TodoRequest struct {
	Title       Field[string] `json:"title" swaggertype:"string" example:"Buy milk"`
	Description Field[string] `json:"description" swaggertype:"string" example:"2% milk from store"`
	IsCompleted Field[Flag]   `json:"is_completed" swaggertype:"boolean" example:"false"`
}

// DecodeTodoRequest parses body. An empty body is an empty object.
func DecodeTodoRequest(body []byte) (TodoRequest, error) {
	var req TodoRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return TodoRequest{}, err
	}
	return req, nil
}

type TodoResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	IsCompleted   bool      `json:"is_completed"`
	TargetEndDate *string   `json:"target_end_date" example:"2025-09-01"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ListMeta struct {
	Page     int  `json:"page"`
	PerPage  int  `json:"per_page"`
	Total    int  `json:"total"`
	LastPage int  `json:"last_page"`
	From     *int `json:"from"`
	To       *int `json:"to"`
}

type ListLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type ListTodosResponse struct {
	Data  []TodoResponse `json:"data"`
	Meta  ListMeta       `json:"meta"`
	Links ListLinks      `json:"links"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors,omitempty"`
}
