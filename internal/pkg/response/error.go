package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/apperror"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/logger"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends a JSON error response.
// It checks if the error is an AppError to determine the status code.
// If it's not an AppError, it defaults to 500 Internal Server Error.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		// err.Error() keeps typed details such as the colliding interval of a conflict.
		c.JSON(appErr.Code, ErrorResponse{Error: err.Error()})
		return
	}

	logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// BadRequest sends a 400 for binding failures.
func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
}
