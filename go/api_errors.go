package inventoryserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/application"
	apierrors "github.com/Abka012/Odin-AI/internal/shared/errors"
)

// problems maps inventory application errors to RFC 7807 responses.
var problems = apierrors.NewChainedResponder("",
	validationProblem,
	notFoundProblem,
	insufficientStockProblem,
	conflictProblem,
	forecastProblem,
)

// respondError preserves the existing call sites while returning RFC 7807 responses.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	apierrors.Respond(c, problem)
}

// respondServiceError maps an error returned by the inventory service.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problems.RespondError(c, err)
}

func validationProblem(err error) (apierrors.ProblemDetail, bool) {
	var verr *application.ValidationError
	if errors.As(err, &verr) {
		return apierrors.NewValidationProblem(verr.Fields).WithDetail(err.Error()), true
	}
	if errors.Is(err, application.ErrValidationFailed) {
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func notFoundProblem(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, application.ErrNotFound) {
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func insufficientStockProblem(err error) (apierrors.ProblemDetail, bool) {
	var serr *application.InsufficientStockError
	if errors.As(err, &serr) {
		return apierrors.ErrInsufficientStock.WithDetail(serr.Error()).
			WithExtension("requested", serr.Requested).
			WithExtension("available", serr.Available), true
	}
	if errors.Is(err, application.ErrInsufficientStock) {
		return apierrors.ErrInsufficientStock.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func conflictProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrDuplicateConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrWriteConflict):
		return apierrors.ErrWriteConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func forecastProblem(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, application.ErrForecastUnavailable) {
		return apierrors.ErrForecastUnavailable.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
