package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/user"
)

var (
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, core.ErrForbidden.Error())
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

func fieldErrors(flds []core.FieldError) map[string]string {
	fldErrs := make(map[string]string, len(flds))
	for _, fErr := range flds {
		fldErrs[fErr.Field] = fErr.Error
	}
	return fldErrs
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			code = http.StatusBadRequest
			if len(origErr.Fields) > 0 {
				message = fieldErrors(origErr.Fields)
			} else {
				message = origErr.Error()
			}
		case *core.ConflictError:
			code = http.StatusConflict
			if len(origErr.Fields) > 0 {
				message = fieldErrors(origErr.Fields)
			} else {
				message = origErr.Error()
			}
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = origErr.Error()
		case *core.UnauthenticatedError:
			code = http.StatusUnauthorized
			message = origErr.Error()
		case *core.UnavailableError:
			code = http.StatusServiceUnavailable
			message = http.StatusText(code)
			logger.Warn(message.(string), err, contextUser(ctx))
		default:
			if origErr == core.ErrForbidden {
				code = http.StatusForbidden
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), contextUser(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// contextUser returns the user making the request, from the token claims, for error reports.
func contextUser(ctx echo.Context) user.User {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr
	}
	var usr user.User
	if claims, err := getContextClaims(ctx); err == nil {
		usr.ID, _ = claims.UserID()
		usr.Username = claims.Username
		usr.Role = claims.Role
	}
	return usr
}
