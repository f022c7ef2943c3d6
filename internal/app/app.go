package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Psychoriddler/Emergilink-prototype/config"
	"github.com/Psychoriddler/Emergilink-prototype/internal/app/microservices"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

var (
	ErrInvalidMode           = errors.New("invalid mode")
	ErrServiceNotInitialized = errors.New("service not initialized")
)

// Service is one runnable process mode. Start blocks until shutdown.
type Service interface {
	Start(ctx context.Context) error
}

type constructor func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error)

var modes = map[types.ServiceMode]constructor{
	types.EmergencyService: func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error) {
		return microservices.NewEmergency(ctx, cfg, log)
	},
	types.NotifierService: func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error) {
		return microservices.NewNotifier(ctx, cfg, log)
	},
}

type App struct {
	mode    types.ServiceMode
	service Service
	log     logger.Logger
}

// NewApplication builds the service selected by cfg.Mode.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	build, ok := modes[cfg.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMode, cfg.Mode)
	}

	service, err := build(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init %s: %w", cfg.Mode, err)
	}

	return &App{
		mode:    cfg.Mode,
		service: service,
		log:     log,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.service == nil {
		return ErrServiceNotInitialized
	}

	a.log.Info(wrap.WithAction(ctx, types.ActionServiceStart), "starting service", "mode", a.mode)
	return a.service.Start(ctx)
}
