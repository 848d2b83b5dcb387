package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/playbook-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope with the status derived from the
// error kind. Internal errors hide their cause.
func RespondError(c *gin.Context, err error) {
	kind := apierr.KindOf(err)
	if kind == "" {
		kind = apierr.KindInternal
	}
	msg := "unknown error"
	var typed *apierr.Error
	switch {
	case kind == apierr.KindInternal:
		msg = "internal error"
	case errors.As(err, &typed) && typed.Message != "":
		msg = typed.Message
	case err != nil:
		msg = err.Error()
	}
	if kind == apierr.KindInternal && err != nil {
		_ = c.Error(err)
	}
	Error(c, apierr.Status(kind), string(kind), msg)
}

// Error writes the envelope verbatim.
func Error(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: message,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
