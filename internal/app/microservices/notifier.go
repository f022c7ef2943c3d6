package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/config"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/gateway"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/handler"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/middleware"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/server"
	broker "github.com/Psychoriddler/Emergilink-prototype/internal/adapter/rabbit"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/rabbit"
)

// NotifierService drains contact_notifications into the SMS/webhook gateway.
// It serves only /health and /metrics over HTTP.
type NotifierService struct {
	rabbit     *rabbit.RabbitMQ
	consumer   *broker.NotificationConsumer
	gateway    *gateway.Webhook
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewNotifier(ctx context.Context, cfg config.Config, log logger.Logger) (*NotifierService, error) {
	client, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), broker.Topology(), log)
	if err != nil {
		log.Error(ctx, "failed to connect to rabbitmq", err)
		return nil, err
	}

	httpServer, err := server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ServiceName:  cfg.Mode.String(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, server.Handlers{
		Health: handler.NewHealth(cfg.Mode.String(), log),
	}, middleware.NewMiddleware(nil, log), log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		_ = client.Close(ctx)
		return nil, err
	}

	return &NotifierService{
		rabbit:     client,
		consumer:   broker.NewNotificationConsumer(client, cfg.RabbitMQ.Prefetch, log),
		gateway:    gateway.NewWebhook(cfg.Gateway.URL, cfg.Gateway.Token, cfg.Gateway.Timeout),
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *NotifierService) Start(ctx context.Context) error {
	errCh := make(chan error, 2)

	consumeCtx, cancel := context.WithCancel(ctx)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := s.consumer.Consume(consumeCtx, s.deliver); err != nil {
			errCh <- err
		}
	}()

	s.httpServer.Run(ctx, errCh)
	defer func() {
		cancel()
		<-consumerDone
		s.close(ctx)
		s.log.Info(ctx, "notifier service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "notifier service started", "gateway", s.cfg.Gateway.URL)

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (s *NotifierService) deliver(ctx context.Context, job models.DeliveryJob) error {
	ctx = wrap.WithAction(ctx, types.ActionGatewayDelivery)

	if err := s.gateway.Deliver(ctx, job); err != nil {
		return wrap.Error(ctx, err)
	}

	s.log.Debug(ctx, "notification handed to gateway", "contact_id", job.Contact.ID, "attempt", job.Attempt)
	return nil
}

func (s *NotifierService) close(ctx context.Context) {
	ctx = wrap.WithAction(context.WithoutCancel(ctx), "notifier_service_close")

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
	}

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.rabbit.Close(closeCtx); err != nil {
		s.log.Warn(ctx, "Failed to close rabbitmq", "error", err.Error())
	}
}
