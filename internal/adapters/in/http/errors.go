package http

import (
	"errors"
	"net/http"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const kindBadRequest = "bad_request"

// writeError renders err as {code, kind, message}. A lost transition race also reports the
// status the order moved to.
func writeError(ctx echo.Context, err error) error {
	status := errs.HTTPStatus(err)
	body := Error{
		Code:    status,
		Kind:    string(errs.KindOf(err)),
		Message: err.Error(),
	}
	if status == http.StatusInternalServerError {
		body.Message = "Internal server error"
		ctx.Logger().Error(err)
	}

	var conflict *order.StatusConflictError
	if errors.As(err, &conflict) {
		body.CurrentStatus = conflict.Actual.String()
	}

	return ctx.JSON(status, body)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Kind:    kindBadRequest,
		Message: message,
	})
}

func badValue(field string, cause error) error {
	return errs.NewValueIsInvalidErrorWithCause(field, cause)
}

// errorHandler renders errors returned by middleware and the router in the same shape as
// handler errors.
func errorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		kind := kindBadRequest
		switch he.Code {
		case http.StatusNotFound:
			kind = string(errs.KindNotFound)
		case http.StatusMethodNotAllowed:
			kind = "method_not_allowed"
		case http.StatusInternalServerError:
			kind = string(errs.KindInternal)
		}
		_ = ctx.JSON(he.Code, Error{Code: he.Code, Kind: kind, Message: message})
		return
	}

	_ = writeError(ctx, err)
}
