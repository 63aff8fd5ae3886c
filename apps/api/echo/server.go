package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/timeac/core"
	"github.com/trezcool/timeac/core/admin"
	"github.com/trezcool/timeac/core/bell"
	"github.com/trezcool/timeac/core/display"
	"github.com/trezcool/timeac/core/schedule"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		Validate    *validator.Validate
		Translator  ut.Translator
		ScheduleSvc *schedule.Service
		AdminSvc    *admin.Service
		BellSvc     *bell.Service
		Monitor     *display.Monitor
	}

	Server struct {
		conf     *core.Config
		app      *echo.Echo
		tokens   *tokenManager
		hub      *hub
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		conf:     deps.Conf,
		app:      echo.New(),
		tokens:   newTokenManager(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.hub = newHub(deps.Monitor, deps.Logger)
	s.setup(deps)
	return s
}

func (s *Server) setup(deps ServerDeps) {
	conf := deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	auth := requireAuth(s.tokens)

	registerDisplayAPI(v1, deps.Monitor, deps.ScheduleSvc, s.hub)
	registerAdminAPI(v1, auth, deps.AdminSvc, s.tokens)
	registerScheduleAPI(v1, auth, deps.ScheduleSvc, deps.Validate)
	registerBellAPI(v1, auth, deps.BellSvc)
}

// Start listens on the configured address. Listener errors are sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

// Shutdown closes the websocket clients then gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	s.hub.close()
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// Tokens exposes the token manager to callers that need to mint tokens (tests, CLI).
func (s *Server) Tokens() *tokenManager {
	return s.tokens
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to TimeAC API!")
}
