package models

// ErrorCode lets clients branch on a failure without parsing the message.
type ErrorCode string

const (
	CodeValidation          ErrorCode = "validation_failed"
	CodeNotFound            ErrorCode = "not_found"
	CodeForbidden           ErrorCode = "forbidden"
	CodeConflict            ErrorCode = "conflict"
	CodeInvalidTransition   ErrorCode = "invalid_transition"
	CodeDuplicateSubmission ErrorCode = "duplicate_submission"
	CodeInternal            ErrorCode = "internal_error"
)

type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    ErrorCode   `json:"code,omitempty"`
	Field   string      `json:"field,omitempty"`
	Page    int         `json:"page,omitempty"`
	Limit   int         `json:"limit,omitempty"`
	Total   int         `json:"total,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{Success: true, Data: data, Message: message}
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{Success: false, Error: err}
}

// CodedError is an error body carrying a machine-readable code.
func CodedError(code ErrorCode, err string) ApiResponse {
	return ApiResponse{Success: false, Error: err, Code: code}
}

// FieldError reports a validation failure on one input field.
func FieldError(field, err string) ApiResponse {
	return ApiResponse{Success: false, Error: err, Code: CodeValidation, Field: field}
}

func PaginatedResponse(data interface{}, page, limit, total int) ApiResponse {
	return ApiResponse{Success: true, Data: data, Page: page, Limit: limit, Total: total}
}
