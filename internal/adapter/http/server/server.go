package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/handler"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/middleware"
	wshandler "github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/ws"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

type Config struct {
	Host         string
	Port         string
	ServiceName  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Handlers groups everything the router exposes. Nil members leave their routes unregistered.
type Handlers struct {
	Health     *handler.Health
	Ambulance  *handler.Ambulance
	Emergency  *handler.Emergency
	Alert      *handler.Alert
	Directory  *handler.Directory
	Contacts   *handler.Contacts
	Navigation *handler.Navigation
	Feed       *wshandler.Feed
}

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes Handlers
	m      *middleware.Middleware

	addr        string
	serviceName string
	log         logger.Logger
}

func New(cfg Config, routes Handlers, m *middleware.Middleware, log logger.Logger) (*API, error) {
	if routes.Health == nil {
		return nil, errors.New("health handler is required")
	}
	if m == nil {
		return nil, errors.New("middleware is required")
	}

	api := &API{
		mux:         http.NewServeMux(),
		routes:      routes,
		m:           m,
		addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		serviceName: cfg.ServiceName,
		log:         log,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:         api.addr,
		Handler:      api.withMiddleware(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return api, nil
}

// Handler exposes the full middleware chain, used by tests.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(
		a.m.RequestID(
			a.m.Logging(
				a.m.RateLimit(
					a.m.Auth(
						// innermost so the mux sets Pattern on the request it sees
						a.m.Metrics(a.serviceName)(a.mux))))))
}
