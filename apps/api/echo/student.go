package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core/access"
	"github.com/trezcool/gradeportal/core/student"
	"github.com/trezcool/gradeportal/core/user"
)

type studentApi struct {
	svc      *student.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		svc:      deps.StudentSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}
	can := func(op access.Operation) echo.MiddlewareFunc { return authorize(op, api.usrSvc) }

	sg := g.Group("/students", jwt)
	sg.GET("", api.query, can(access.ListStudents))
	sg.POST("", api.create, can(access.CreateStudent))
	sg.GET("/user/:userId", api.retrieveByUser, can(access.ViewOwnStudent))

	// detail endpoints
	sg.GET("/:id", api.retrieve, can(access.RetrieveStudent))
	sg.PUT("/:id", api.update, can(access.UpdateStudent))
	sg.DELETE("/:id", api.destroy, can(access.DeleteStudent))
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

// retrieveByUser returns the student record linked to a user. Students may only see their own.
func (api *studentApi) retrieveByUser(ctx echo.Context) error {
	userID, err := pathID(ctx, "userId")
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	if ctxUsr.IsStudent() && ctxUsr.ID != userID {
		return errHttpForbidden
	}

	s, err := api.svc.GetByUserID(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "finding student by user ID")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}
