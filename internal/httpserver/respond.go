package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/domain"
)

type messageBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps the domain error taxonomy onto HTTP status codes:
// validation 400, not-found 404, conflict 409, anything else 500.
func respondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		code = http.StatusConflict
	}
	c.AbortWithStatusJSON(code, messageBody{
		Status:  code,
		Error:   http.StatusText(code),
		Message: errorMessage(err),
	})
}

func errorMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrNotFound, domain.ErrConflict} {
		if prefix := sentinel.Error() + ": "; strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

func respondBadJSON(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, messageBody{
		Status:  http.StatusBadRequest,
		Error:   http.StatusText(http.StatusBadRequest),
		Message: "body of request contained bad or no data",
	})
}
