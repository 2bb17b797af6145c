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

	"github.com/mwangaza/darasa/core"
	"github.com/mwangaza/darasa/core/school"
	"github.com/mwangaza/darasa/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool
		Logger         core.Logger
		// Validate & Translator must be the pair the services were built with,
		// otherwise field errors lose their translations.
		Validate   *validator.Validate
		Translator ut.Translator
		UserSvc    *user.Service
		SchoolSvc  *school.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug && !core.Conf.TestMode

	s.app.Pre(middleware.RemoveTrailingSlash())
	// correlation identifier on every response
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	s.app.Use(middleware.CORS())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = debug

	s.app.GET("/health", health)

	jwt := middleware.JWTWithConfig(appJWTConfig)
	registerAuthAPI(s.app, s.opts.UserSvc, s.opts.Validate)
	registerClassAPI(s.app, jwt, s.opts.SchoolSvc)
}

func (s *server) Start() {
	go func() {
		if err := s.app.Start(s.opts.Addr); err != nil && err != http.ErrServerClosed {
			s.app.Logger.Fatal(err)
		}
	}()

	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	<-s.shutdown

	ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		s.app.Logger.Fatal(err)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	s.shutdown <- os.Interrupt
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
