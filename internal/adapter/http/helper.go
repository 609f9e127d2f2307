package http

import (
	"errors"
	"net/http"

	"credit-voucher-engine/internal/domain/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// conflicts are rule refusals the caller can act on; they all answer 409.
var conflicts = []error{
	errs.ErrInvalidTransition,
	errs.ErrInsufficientCredit,
	errs.ErrInsufficientTraderBalance,
	errs.ErrVoucherExpired,
	errs.ErrVoucherNotActive,
	errs.ErrNoAcceptedDelegation,
	errs.ErrIrreversibleState,
	errs.ErrPendingLoanExists,
	errs.ErrAlreadyApproved,
	errs.ErrAlreadyExists,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConcurrentModification):
		return http.StatusServiceUnavailable
	}
	for _, target := range conflicts {
		if errors.Is(err, target) {
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

// writeError maps a use case error to its status code and body.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	code := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		resp.Error = "validation failed"
		resp.Details = []FieldError{{Field: ve.Field, Message: ve.Message}}
	}
	var te *errs.TransitionError
	if errors.As(err, &te) {
		resp.Allowed = te.Allowed
	}
	if code == http.StatusServiceUnavailable {
		c.Response().Header().Set(echo.HeaderRetryAfter, "1")
	}
	if code == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		resp.Error = "internal error"
	}
	return c.JSON(code, resp)
}

// bindValid binds path, query and body into req and validates it. It writes
// the 400/422 answer itself and reports false when the handler must stop.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
