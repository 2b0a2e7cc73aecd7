package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/access"
	"github.com/trezcool/gradeportal/core/user"
)

type userApi struct {
	conf       *core.Config
	svc        *user.Service
	validate   *validator.Validate
	translator ut.Translator
}

func newUserApi(deps ServerDeps) *userApi {
	return &userApi{
		conf:       deps.Conf,
		svc:        deps.UserSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := newUserApi(deps)

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/signup", api.signup)
	ag.POST("/login", api.login)

	// authed endpoints
	ag.POST("/token-refresh", api.refreshToken, jwt, authorize(access.RefreshToken, api.svc))
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := newUserApi(deps)
	can := func(op access.Operation) echo.MiddlewareFunc { return authorize(op, api.svc) }

	ug := g.Group("/users", jwt)
	ug.GET("/current", api.current, can(access.ViewOwnUser))
	ug.GET("/teachers", api.listTeachers, can(access.ListTeachers))
	ug.GET("/pending", api.listPending, can(access.ListPendingUsers))
	ug.GET("/students", api.listStudents, can(access.ListApprovedStudents))

	// detail endpoints
	ug.PUT("/:id/approve", api.approve, can(access.ApproveUser))
	ug.PUT("/:id/decline", api.decline, can(access.DeclineUser))
	ug.PUT("/:id/assign", api.assignClass, can(access.AssignTeacher))
	ug.DELETE("/:id", api.destroy, can(access.DeleteUser))
}

// Handlers

func (api *userApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Signup(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: &usr})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) current(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) listTeachers(ctx echo.Context) error {
	users, err := api.svc.ListTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing teachers")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) listPending(ctx echo.Context) error {
	users, err := api.svc.ListPending(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing pending users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) listStudents(ctx echo.Context) error {
	users, err := api.svc.ListApprovedStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing approved students")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) approve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	usr, err := api.svc.Approve(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "approving user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) decline(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	usr, err := api.svc.Decline(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "declining user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) assignClass(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data user.AssignClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignClass")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.AssignClass(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "assigning class")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	// ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	if id == ctxUsr.ID {
		return errHttpForbidden
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}
