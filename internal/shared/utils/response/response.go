package response

import (
	"net/http"

	"ticketcore/pkg/logger"

	"github.com/gin-gonic/gin"
)

// StandardApiResponse is the envelope of every API response
type StandardApiResponse struct {
	Status     string      `json:"status"` // "success" or "error"
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError writes an error envelope carrying err's message
func RespondError(c *gin.Context, code int, message string, err error) {
	RespondErrorWith(c, logger.GetDefault(), code, message, err)
}

// RespondErrorWith is RespondError with the caller's logger; server errors are logged through it
func RespondErrorWith(c *gin.Context, l *logger.Logger, code int, message string, err error) {
	var details interface{}
	if err != nil {
		details = err.Error()
		if code >= http.StatusInternalServerError {
			l.LogHTTPError(c, err, code)
		}
	}
	RespondJSON(c, "error", code, message, nil, details)
}
