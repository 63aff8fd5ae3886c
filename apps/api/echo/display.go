package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/timeac/core/display"
	"github.com/trezcool/timeac/core/schedule"
)

type displayApi struct {
	monitor *display.Monitor
	svc     *schedule.Service
	hub     *hub
}

func registerDisplayAPI(g *echo.Group, monitor *display.Monitor, svc *schedule.Service, h *hub) {
	api := displayApi{monitor: monitor, svc: svc, hub: h}

	dg := g.Group("/display")
	dg.GET("", api.current)
	dg.GET("/ws", api.stream)
}

// Handlers

func (api *displayApi) current(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, newDisplayResponse(api.monitor.Current()))
}

func (api *displayApi) stream(ctx echo.Context) error {
	return api.hub.serve(ctx)
}
