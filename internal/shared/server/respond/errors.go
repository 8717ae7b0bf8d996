package respond

import (
	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/shared/telemetry"
)

// ErrorBody is the standard error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// FieldIssue is one entry of a validation_error details list.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// Error logs and aborts with the standard error envelope.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if subjectID := c.GetString("userId"); subjectID != "" {
		fields["subject_id"] = subjectID
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
