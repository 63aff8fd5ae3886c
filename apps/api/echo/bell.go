package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core/bell"
)

type bellApi struct {
	svc *bell.Service
}

func registerBellAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *bell.Service) {
	api := bellApi{svc: svc}

	bg := g.Group("/bell", auth)
	bg.GET("", api.retrieve)
	bg.PATCH("", api.update)
	bg.POST("/ring", api.ring)
}

func (api *bellApi) respond(ctx echo.Context, controls bell.Controls) error {
	alias, err := api.svc.CurrentAlias(ctx.Request().Context())
	if err != nil && errors.Cause(err) != bell.ErrNotFound {
		return errors.Wrap(err, "reading current alias")
	}
	return ctx.JSON(http.StatusOK, BellResponse{Controls: controls, CurrentAlias: alias})
}

// Handlers

func (api *bellApi) retrieve(ctx echo.Context) error {
	controls, err := api.svc.Controls(ctx.Request().Context())
	if err != nil {
		return err
	}
	return api.respond(ctx, controls)
}

func (api *bellApi) update(ctx echo.Context) error {
	var data bell.ControlsPatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ControlsPatch")
	}
	controls, err := api.svc.UpdateControls(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return api.respond(ctx, controls)
}

func (api *bellApi) ring(ctx echo.Context) error {
	controls, err := api.svc.Ring(ctx.Request().Context())
	if err != nil {
		return err
	}
	return api.respond(ctx, controls)
}
