package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
)

// StatusFor maps directory, validation and session errors to an HTTP status.
func StatusFor(err error) int {
	var (
		vErr *domain.ValidationError
		bErr *domain.BackendError
		nErr *domain.NetworkError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSubmitInFlight):
		return http.StatusConflict
	case errors.As(err, &bErr):
		if bErr.StatusCode >= 400 && bErr.StatusCode < 500 {
			return bErr.StatusCode
		}
		return http.StatusBadGateway
	case errors.As(err, &nErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// WriteError renders err as {"error": message}. Validation failures also
// carry the offending field.
func WriteError(c *gin.Context, err error, fallback string) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		logging.NewLogger(c.Request.Context()).LogError(c.FullPath(), err)
	}

	body := gin.H{"error": domain.UserMessage(err, fallback)}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		body["field"] = vErr.Field
	}
	c.JSON(code, body)
}
