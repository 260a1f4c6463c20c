package http

import (
	"errors"
	"net/http"
	"strconv"

	loanDomain "p2p-lending-ledger/internal/domain/loan"

	"github.com/labstack/echo/v4"
)

// statusFor maps the domain error taxonomy onto distinct HTTP codes so
// callers can tell "not found" from "wrong actor" from "wrong state".
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, loanDomain.ErrInvalidParameters):
		return http.StatusBadRequest, "INVALID_PARAMETERS"
	case errors.Is(err, loanDomain.ErrUnauthorized):
		return http.StatusForbidden, "UNAUTHORIZED"
	case errors.Is(err, loanDomain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, loanDomain.ErrSelfDealing):
		return http.StatusConflict, "SELF_DEALING"
	case errors.Is(err, loanDomain.ErrInvalidState):
		return http.StatusConflict, "INVALID_STATE"
	case errors.Is(err, loanDomain.ErrAmountMismatch):
		return http.StatusUnprocessableEntity, "AMOUNT_MISMATCH"
	default:
		return http.StatusInternalServerError, "STORAGE_FAILURE"
	}
}

func writeDomainErr(c echo.Context, err error) error {
	code, tag := statusFor(err)
	return c.JSON(code, ErrorResponse{Error: err.Error(), Code: tag})
}

func parseLoanID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
