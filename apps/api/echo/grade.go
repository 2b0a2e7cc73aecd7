package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/access"
	"github.com/trezcool/gradeportal/core/grade"
	"github.com/trezcool/gradeportal/core/student"
	"github.com/trezcool/gradeportal/core/user"
)

type gradeApi struct {
	svc        *grade.Service
	studentSvc *student.Service
	usrSvc     *user.Service
	validate   *validator.Validate
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := gradeApi{
		svc:        deps.GradeSvc,
		studentSvc: deps.StudentSvc,
		usrSvc:     deps.UserSvc,
		validate:   deps.Validate,
	}
	can := func(op access.Operation) echo.MiddlewareFunc { return authorize(op, api.usrSvc) }

	gg := g.Group("/grades", jwt)
	gg.POST("", api.assign, can(access.CreateGrade))
	gg.PUT("/:id", api.update, can(access.UpdateGrade))
	gg.DELETE("/:id", api.destroy, can(access.DeleteGrade))
	gg.GET("/student/:studentId", api.listByStudent, can(access.ViewGrades))
	gg.GET("/student/:studentId/report", api.reportCard, can(access.ViewReportCard))
	gg.GET("/subject/:subjectId", api.listBySubject, can(access.ViewSubjectGrades))
}

// Handlers

// assign creates the grade of a student in a subject or overwrites the existing one.
func (api *gradeApi) assign(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.svc.Assign(ctx.Request().Context(), data.StudentID, data.SubjectID, *data.Value)
	if err != nil {
		return errors.Wrap(err, "assigning grade")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data grade.UpdateGrade
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.svc.Update(ctx.Request().Context(), id, *data.Value)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradeApi) listByStudent(ctx echo.Context) error {
	id, err := pathID(ctx, "studentId")
	if err != nil {
		return err
	}
	grades, err := api.svc.ListByStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing student grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

// reportCard returns the report card of a student. Students may only see their own.
func (api *gradeApi) reportCard(ctx echo.Context) error {
	id, err := pathID(ctx, "studentId")
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	if ctxUsr.IsStudent() {
		s, err := api.studentSvc.GetByID(ctx.Request().Context(), id)
		if err != nil && !core.IsNotFound(err) {
			return errors.Wrap(err, "finding student by ID")
		}
		if err != nil || !s.IsOwnedBy(ctxUsr.ID) {
			return errHttpForbidden
		}
	}

	rc, err := api.svc.ReportCard(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "computing report card")
	}
	return ctx.JSON(http.StatusOK, rc)
}

func (api *gradeApi) listBySubject(ctx echo.Context) error {
	id, err := pathID(ctx, "subjectId")
	if err != nil {
		return err
	}
	grades, err := api.svc.ListBySubject(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing subject grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}
