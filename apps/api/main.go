package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	dig_container "github.com/trezcool/timeac/apps/api/di/dig"
	echoapi "github.com/trezcool/timeac/apps/api/echo"
	"github.com/trezcool/timeac/core"
	"github.com/trezcool/timeac/core/bell"
	"github.com/trezcool/timeac/core/display"
	"github.com/trezcool/timeac/core/schedule"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		logger core.Logger,
		res *dig_container.Resources,
		scheduleSvc *schedule.Service,
		bellSvc *bell.Service,
		monitor *display.Monitor,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

		defer func() {
			if err := res.Close(); err != nil {
				logger.Error("Failed to close resources", err)
			}
		}()
		defer logger.Info("Application stopped")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := scheduleSvc.Load(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("loading schedules: %v", err), err)
		}
		if err := scheduleSvc.Listen(ctx); err != nil {
			logger.Error(fmt.Sprintf("listening to schedule changes: %v", err), err)
		}

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start Display Monitor

		monitorDone := make(chan struct{})
		go func() {
			defer close(monitorDone)
			_ = monitor.Run(ctx)
		}()

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer shutdownCancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}

			cancel()
			<-monitorDone
			bellSvc.Close()
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
