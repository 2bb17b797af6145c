package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwangaza/darasa/core/school"
)

type classApi struct {
	svc *school.Service
}

func registerClassAPI(app *echo.Echo, jwt echo.MiddlewareFunc, svc *school.Service) {
	api := classApi{svc: svc}

	g := app.Group("/classes", jwt)
	g.GET("", api.query)

	// class-scoped reads; ownership enforced by the service
	dg := g.Group("/:id")
	dg.GET("/roster", api.roster)
	dg.GET("/metrics", api.metrics)
	dg.GET("/assignments", api.assignments)

	app.POST("/assignments", api.createAssignment, jwt)
}

func (api *classApi) query(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	classes, err := api.svc.QueryClasses(ctx.Request().Context(), ident)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []school.ClassSummary{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) roster(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	students, err := api.svc.Roster(ctx.Request().Context(), ident, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying class roster")
	}
	if students == nil {
		students = []school.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *classApi) metrics(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	metrics, err := api.svc.Metrics(ctx.Request().Context(), ident, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing class metrics")
	}
	return ctx.JSON(http.StatusOK, metrics)
}

func (api *classApi) assignments(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	assignments, err := api.svc.Assignments(ctx.Request().Context(), ident, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying class assignments")
	}
	if assignments == nil {
		assignments = []school.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *classApi) createAssignment(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	var data school.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	asg, err := api.svc.CreateAssignment(ctx.Request().Context(), ident, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}
