package http

import (
	"errors"
	"net/http"

	"ictloan-backend/internal/adapter/matrix"
	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/domain/ticket"
	"ictloan-backend/internal/usecase/integration"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable maps domain errors to a status and a stable machine code.
// Order matters only for errors that wrap one another.
var errorTable = []errorMapping{
	{loan.ErrInvalidToken, http.StatusBadRequest, "InvalidToken"},
	{loan.ErrExpiredToken, http.StatusGone, "ExpiredToken"},
	{loan.ErrUnauthorized, http.StatusForbidden, "Unauthorized"},
	{loan.ErrInvalidStateTransition, http.StatusConflict, "InvalidStateTransition"},
	{loan.ErrAssetUnavailable, http.StatusConflict, "AssetUnavailable"},
	{loan.ErrNotOverdue, http.StatusConflict, "NotOverdue"},
	{loan.ErrLoanTooLong, http.StatusUnprocessableEntity, "LoanTooLong"},
	{loan.ErrNoItems, http.StatusUnprocessableEntity, "NoItems"},
	{loan.ErrInvalidRange, http.StatusUnprocessableEntity, "InvalidRange"},
	{loan.ErrInvalidApplicant, http.StatusUnprocessableEntity, "InvalidApplicant"},
	{loan.ErrNotFound, http.StatusNotFound, "NotFound"},
	{asset.ErrNotFound, http.StatusNotFound, "NotFound"},
	{asset.ErrInvalidCondition, http.StatusUnprocessableEntity, "InvalidCondition"},
	{ticket.ErrNotFound, http.StatusNotFound, "NotFound"},
	{ticket.ErrNoAssociatedAsset, http.StatusUnprocessableEntity, "NoAssociatedAsset"},
	{ticket.ErrAlreadyResolved, http.StatusConflict, "AlreadyResolved"},
	{integration.ErrInvalidSchedule, http.StatusUnprocessableEntity, "InvalidSchedule"},
	{matrix.ErrNoApprover, http.StatusUnprocessableEntity, "NoApprover"},
}

func mapError(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "InternalError"
}

// writeError renders a usecase error. Unmapped errors are logged and
// hidden behind a generic message.
func writeError(c echo.Context, err error) error {
	status, code := mapError(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).
			Str("path", c.Path()).
			Msg("request failed")
		return c.JSON(status, ErrorResponse{Error: "internal error", Code: code})
	}
	return c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "BadRequest"})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    "ValidationFailed",
		Details: ToFieldErrors(err),
	})
}
