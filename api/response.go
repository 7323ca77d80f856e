package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Unified response structure for all API endpoints. Endpoints use these
// helpers so success and error payloads stay consistent.

// ErrorCode defines standard error codes for programmatic handling
type ErrorCode string

const (
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"       // 400 - Malformed request
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"  // 400 - Validation failed
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"         // 404 - Resource not found
	ErrCodeConflict      ErrorCode = "CONFLICT"          // 409 - Resource conflict
	ErrCodeConfirmNeeded ErrorCode = "CONFIRM_REQUIRED"  // 409 - Destructive op needs confirm flag
	ErrCodeUnprocessable ErrorCode = "UNPROCESSABLE"     // 422 - Semantic error
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"    // 500 - Unexpected error
)

// ErrorResponse is the standard error response structure
type ErrorResponse struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

// DataResponse wraps a single resource or object response
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ListResponse wraps a collection of resources
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// RespondData sends a 200 OK with a single data object
func RespondData[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, DataResponse[T]{Data: data})
}

// RespondCreated sends a 201 Created with the created resource
func RespondCreated[T any](c *gin.Context, data T) {
	c.JSON(http.StatusCreated, DataResponse[T]{Data: data})
}

// RespondList sends a 200 OK with a list of items
func RespondList[T any](c *gin.Context, data []T) {
	// Empty array instead of null
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, ListResponse[T]{Data: data})
}

// RespondNoContent sends a 204 No Content response
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, status int, code ErrorCode, message string) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	c.JSON(status, resp)
}

// RespondBadRequest sends a 400 Bad Request error
func RespondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// RespondValidationError sends a 400 Bad Request for failed validation
func RespondValidationError(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, ErrCodeValidation, message)
}

// RespondNotFound sends a 404 Not Found error
func RespondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// RespondConflict sends a 409 Conflict error
func RespondConflict(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, ErrCodeConflict, message)
}

// RespondConfirmRequired sends a 409 telling the client to retry with the
// confirm flag set
func RespondConfirmRequired(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, ErrCodeConfirmNeeded, message)
}

// RespondUnprocessable sends a 422 Unprocessable Entity error
func RespondUnprocessable(c *gin.Context, message string) {
	respondError(c, http.StatusUnprocessableEntity, ErrCodeUnprocessable, message)
}

// RespondInternalError sends a 500 Internal Server Error
func RespondInternalError(c *gin.Context, message string) {
	respondError(c, http.StatusInternalServerError, ErrCodeInternal, message)
}
