package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
)

const internalMessage = "internal server error"

type ErrorEnvelope struct {
	Error string `json:"error"`
}

type DataEnvelope struct {
	Data any `json:"data"`
}

// StatusAndMessage maps err onto the status and client-facing message of an
// error response. Server-side failures never expose their cause.
func StatusAndMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, internalMessage
	}
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status >= http.StatusInternalServerError {
			return status, internalMessage
		}
		return status, ae.Error()
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound, "not found"
	}
	return http.StatusInternalServerError, internalMessage
}

// RespondError writes {"error": message} and records err on the gin context
// so the request logger reports the cause.
func RespondError(c *gin.Context, err error) {
	status, msg := StatusAndMessage(err)
	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorEnvelope{Error: msg})
}

// AbortError is RespondError for middleware.
func AbortError(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondData wraps a collection as {"data": rows}.
func RespondData(c *gin.Context, rows any) {
	c.JSON(http.StatusOK, DataEnvelope{Data: rows})
}

// RespondWrite answers an idempotent write: 201 for a first write, 200 for a replay.
func RespondWrite(c *gin.Context, replayed bool, payload any) {
	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	c.JSON(status, payload)
}
