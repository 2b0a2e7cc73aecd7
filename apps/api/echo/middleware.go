package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/gradeportal/core/access"
	"github.com/trezcool/gradeportal/core/user"
)

// authorize lets the request through when the authenticated user's role may perform `op`.
// It must run after jwtMiddleware.
func authorize(op access.Operation, svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if access.IsPublic(op) {
				return next(ctx)
			}
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return err
			}
			if err = access.Authorize(usr.Role, op); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}
