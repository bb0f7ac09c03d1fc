package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type DataEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ListEnvelope[T any] struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    []T  `json:"data"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func AbortError(c *gin.Context, status int, code string, err error) {
	RespondError(c, status, code, err)
	c.Abort()
}

func RespondData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, DataEnvelope{Success: true, Message: message, Data: data})
}

func RespondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, ListEnvelope[T]{Success: true, Count: len(items), Data: items})
}

// Classify maps a service error onto its HTTP status and code. Anything that
// is not a known sentinel is an internal error.
func Classify(err error) *apierr.Error {
	if ae := apierr.As(err); ae != nil {
		return ae
	}
	switch {
	case errors.Is(err, domain.ErrValidation):
		return apierr.BadRequest("invalid_request", err)
	case errors.Is(err, domain.ErrNotFound):
		return apierr.NotFound("not_found", err)
	case errors.Is(err, domain.ErrInvalidTransition):
		return apierr.Conflict("invalid_transition", err)
	case errors.Is(err, domain.ErrUnauthorized):
		return apierr.New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, domain.ErrForbidden):
		return apierr.New(http.StatusForbidden, "forbidden", err)
	default:
		return apierr.Internal("internal", err)
	}
}

// RespondServiceError writes err through Classify. Internal causes are not
// echoed to the client.
func RespondServiceError(c *gin.Context, err error) *apierr.Error {
	ae := Classify(err)
	if ae.Status >= http.StatusInternalServerError {
		RespondError(c, ae.Status, ae.Code, errors.New("internal server error"))
		return ae
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
	return ae
}
