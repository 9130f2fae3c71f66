package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"creditnexus/internal/domain/credit"
	"creditnexus/internal/domain/loan"
	"creditnexus/internal/domain/participant"
	"creditnexus/internal/domain/transfer"
	"creditnexus/internal/usecase/bank"
	loanUC "creditnexus/internal/usecase/loan"
)

// bindAndValidate answers 400 on a malformed body and 422 on a rejected one.
// It reports whether the handler may continue.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	return true, nil
}

func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
}

// statusFor maps ledger errors to HTTP statuses. Context errors win over
// the errors that wrap them.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, participant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, credit.ErrScoreTooLow),
		errors.Is(err, loanUC.ErrSelfCoBorrower),
		errors.Is(err, loanUC.ErrRepaymentBeforeLoan):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrAlreadyRepaid), errors.Is(err, bank.ErrNotInitialized):
		return http.StatusConflict
	case errors.Is(err, transfer.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, loanUC.ErrHistoryUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
		msg = "internal error"
	}
	return c.JSON(code, ErrorResponse{Error: msg})
}
