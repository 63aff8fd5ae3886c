package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/timeac/core/bell"
	"github.com/trezcool/timeac/core/schedule"
)

type (
	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	ResetRequest struct {
		Confirm bool `json:"confirm"`
	}

	BellResponse struct {
		bell.Controls
		CurrentAlias string `json:"currentAlias"`
	}

	DisplayResponse struct {
		schedule.Resolution
		Alias schedule.Alias       `json:"alias"`
		Block *schedule.TimedBlock `json:"block"`
	}
)

func newDisplayResponse(res schedule.Resolution) DisplayResponse {
	resp := DisplayResponse{Resolution: res, Alias: res.Alias()}
	if blk, ok := res.CurrentBlock(); ok {
		resp.Block = &blk
	}
	return resp
}

// intParam parses an integer path parameter. Malformed values are reported as not found.
func intParam(ctx echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errHttpNotFound
	}
	return v, nil
}
