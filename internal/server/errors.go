package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/auth"
	"github.com/nashtech/odmat/internal/export"
	"github.com/nashtech/odmat/internal/questions"
	"github.com/nashtech/odmat/internal/store"
	"github.com/nashtech/odmat/internal/survey"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var errNotCompleted = errors.New("assessment is not completed")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		verr    assessment.ValidationError
		invalid *auth.InvalidInputError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &invalid),
		errors.Is(err, assessment.ErrNoAnswer),
		errors.Is(err, survey.ErrTitleRequired),
		errors.Is(err, survey.ErrInvalidSchema),
		errors.Is(err, survey.ErrUnknownType),
		errors.Is(err, survey.ErrLastChoice),
		errors.Is(err, survey.ErrChoiceRange),
		errors.Is(err, auth.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, survey.ErrForbidden), errors.Is(err, auth.ErrNotVerified):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, survey.ErrNotFound),
		errors.Is(err, survey.ErrElementNotFound),
		errors.Is(err, questions.ErrNotFound),
		errors.Is(err, auth.ErrNotFound),
		errors.Is(err, assessment.ErrNotResumable):
		return http.StatusNotFound
	case errors.Is(err, assessment.ErrCompleted),
		errors.Is(err, assessment.ErrNoUserDetails),
		errors.Is(err, assessment.ErrNotOnQuestion),
		errors.Is(err, auth.ErrEmailInUse),
		errors.Is(err, export.ErrNoResults),
		errors.Is(err, errNotCompleted):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := statusFor(err)
		body := errorBody{Message: err.Error()}

		var he *echo.HTTPError
		var verr assessment.ValidationError
		switch {
		case errors.As(err, &he):
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				body.Message = msg
			} else {
				body.Message = http.StatusText(code)
			}
		case errors.As(err, &verr):
			body.Fields = verr
		}

		if code >= http.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Request().URL.Path), zap.Error(err))
			body = errorBody{Message: http.StatusText(code)}
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}
