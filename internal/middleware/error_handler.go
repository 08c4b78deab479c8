package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"shopmall_app_echo/internal/apperr"
	"shopmall_app_echo/internal/services"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CustomErrorHandler creates a custom error handler for Echo. Taxonomy errors
// map to their HTTP status; gateway errors surface the provider's code and
// message verbatim with a 502.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := errorDetail{Code: string(apperr.CodeInternal), Message: "something went wrong"}

	var gwErr *services.GatewayError
	var appErr *apperr.Error
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &gwErr):
		code = http.StatusBadGateway
		detail = errorDetail{Code: gwErr.Code, Message: gwErr.Message}

	case errors.As(err, &appErr):
		code = apperr.HTTPStatus(appErr)
		detail = errorDetail{Code: string(appErr.Code), Message: appErr.Message}

	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			detail.Message = msg
		}
		detail.Code = http.StatusText(code)
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	if err := c.JSON(code, errorBody{Error: detail}); err != nil {
		c.Logger().Error(err)
	}
}
