package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core/schedule"
)

type scheduleApi struct {
	svc      *schedule.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *schedule.Service, validate *validator.Validate) {
	api := scheduleApi{svc: svc, validate: validate}

	sg := g.Group("/schedules", auth)
	sg.GET("", api.query)
	sg.PUT("", api.save)
	sg.POST("/reset", api.reset)

	// detail endpoints
	dg := sg.Group("/:id")
	dg.PUT("/start-time", api.setStartTime)
	dg.POST("/blocks", api.addBlock)
	dg.PATCH("/blocks/:blockID", api.editBlock)
	dg.DELETE("/blocks/:blockID", api.deleteBlock)

	tg := g.Group("/settings", auth)
	tg.GET("", api.settings)
	tg.POST("/:timeOfDay/toggle", api.toggleDayType)
}

// Handlers

func (api *scheduleApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Snapshot())
}

func (api *scheduleApi) save(ctx echo.Context) error {
	var data schedule.Snapshot
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Snapshot")
	}
	snap, err := api.svc.Save(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *scheduleApi) reset(ctx echo.Context) error {
	var data ResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetRequest")
	}
	if !data.Confirm {
		return errResetNotConfirmed
	}
	snap, err := api.svc.Reset(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *scheduleApi) settings(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Settings())
}

func (api *scheduleApi) toggleDayType(ctx echo.Context) error {
	tod, ok := schedule.ParseTimeOfDay(ctx.Param("timeOfDay"))
	if !ok {
		return errHttpNotFound
	}
	settings, err := api.svc.ToggleDayType(ctx.Request().Context(), tod)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *scheduleApi) setStartTime(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data schedule.StartTimeUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StartTimeUpdate")
	}
	sched, err := api.svc.SetStartTime(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sched)
}

func (api *scheduleApi) addBlock(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	blk, err := api.svc.AddBlock(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, blk)
}

func (api *scheduleApi) editBlock(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	blockID, err := intParam(ctx, "blockID")
	if err != nil {
		return err
	}
	var data schedule.BlockEdit
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BlockEdit")
	}
	blk, err := api.svc.EditBlock(ctx.Request().Context(), id, blockID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, blk)
}

func (api *scheduleApi) deleteBlock(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	blockID, err := intParam(ctx, "blockID")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteBlock(ctx.Request().Context(), id, blockID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
