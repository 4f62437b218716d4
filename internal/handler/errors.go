package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gatovet/clinic-api/internal/repository"
	"github.com/gatovet/clinic-api/internal/service/lifecycle"
	apperrors "github.com/gatovet/clinic-api/pkg/errors"
	"github.com/gatovet/clinic-api/pkg/httputil"
)

// RespondServiceError maps service-layer errors onto HTTP responses.
// Transition rejections map to 409 so clients can re-fetch and retry from
// current state.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		httputil.RespondWithError(c, apperrors.Conflict(err.Error(), err))
	case errors.Is(err, lifecycle.ErrConsultationInProgress):
		httputil.RespondWithError(c, apperrors.Conflict(err.Error(), err))
	case errors.Is(err, repository.ErrNotFound):
		httputil.RespondWithError(c, apperrors.NotFound("resource", err))
	default:
		httputil.RespondWithError(c, apperrors.Internal(err))
	}
}
