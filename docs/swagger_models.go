package docs

// ErrorResponse is the body of every failed request.
// @Description Error information
type ErrorResponse struct {
	// Error category
	Type string `json:"type" example:"VALIDATION_ERROR"`

	// Human readable message
	Message string `json:"message" example:"Invalid request payload"`

	// HTTP status code as a string
	Code string `json:"code" example:"400"`

	// Same as message, for clients that only read {error}
	Error string `json:"error" example:"Invalid request payload"`

	// Extra detail, only for client errors
	Details string `json:"details,omitempty" example:"memberId is required"`
}

// SuccessResponse acknowledges a write without a body of its own.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// WebhookAck is what payOS receives for every notification it should not retry.
type WebhookAck struct {
	Success bool `json:"success" example:"true"`
}
