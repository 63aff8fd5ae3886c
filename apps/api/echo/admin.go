package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core/admin"
)

type adminApi struct {
	svc    *admin.Service
	tokens *tokenManager
}

func registerAdminAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *admin.Service, tokens *tokenManager) {
	api := adminApi{svc: svc, tokens: tokens}

	ag := g.Group("/admin")

	// un-authed endpoints
	ag.POST("/login", api.login)

	// authed endpoints
	ag.PUT("/password", api.changePassword, auth)
}

// Handlers

func (api *adminApi) login(ctx echo.Context) error {
	var data admin.Login
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Login")
	}
	if err := api.svc.CheckPassword(ctx.Request().Context(), data.Password); err != nil {
		return err
	}
	token, err := api.tokens.GenerateToken(api.tokens.AdminClaims())
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *adminApi) changePassword(ctx echo.Context) error {
	var data admin.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err := api.svc.ChangePassword(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password changed successfully."})
}
