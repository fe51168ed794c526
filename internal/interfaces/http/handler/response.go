package handler

import "github.com/erp/returns/internal/interfaces/http/dto"

// Typed envelopes referenced by the swag annotations. The handlers write
// dto.Response; these only give the generated docs a concrete data schema.

// APIResponse is a success envelope with typed data
type APIResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    T         `json:"data,omitempty"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse is the envelope of every 4xx and 5xx response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
