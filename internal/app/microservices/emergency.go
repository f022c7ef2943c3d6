package microservices

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Psychoriddler/Emergilink-prototype/config"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/gateway"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/handler"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/middleware"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/server"
	wshandler "github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/ws"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/locationIQ"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/memory"
	broker "github.com/Psychoriddler/Emergilink-prototype/internal/adapter/rabbit"
	ledger "github.com/Psychoriddler/Emergilink-prototype/internal/adapter/redis"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/alert"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/auth"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/contacts"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/directory"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/matcher"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/notifier"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/registry"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/route"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/sos"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/rabbit"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/scheduler"
	ws "github.com/Psychoriddler/Emergilink-prototype/pkg/wsHub"
)

type EmergencyService struct {
	repos      *repositories
	redis      *goredis.Client
	rabbit     *rabbit.RabbitMQ
	hub        *ws.ConnectionHub
	cron       *scheduler.Cron
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewEmergency(ctx context.Context, cfg config.Config, log logger.Logger) (_ *EmergencyService, err error) {
	s := &EmergencyService{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			s.close(ctx)
		}
	}()

	s.repos, err = newRepositories(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to setup storage", err)
		return nil, err
	}

	var (
		channel notifier.Channel = gateway.NewLogChannel(log)
		events  *broker.EventPublisher
	)
	if cfg.Notifier.Channel == "rabbit" {
		s.rabbit, err = rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), broker.Topology(), log)
		if err != nil {
			log.Error(ctx, "failed to connect to rabbitmq", err)
			return nil, err
		}
		channel = broker.NewDeliveryChannel(s.rabbit)
		events = broker.NewEventPublisher(s.rabbit)
	}

	var dedup notifier.Ledger = memory.NewLedger(cfg.Notifier.LedgerTTL)
	if cfg.Notifier.Ledger == "redis" {
		s.redis, err = ledger.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Error(ctx, "failed to connect to redis", err)
			return nil, err
		}
		dedup = ledger.NewLedger(s.redis, cfg.Notifier.LedgerTTL)
	}

	s.hub = ws.NewConnHub(log)
	feed := wshandler.NewFeed(s.hub, cfg.Mode.String(), log)

	// registry
	fleet := registry.New(registry.Options{
		HoldTTL:     cfg.Registry.HoldTTL,
		AvgSpeedKmh: cfg.Matcher.AvgSpeedKmh,
	}, log)
	if err = fleet.Sync(ctx, s.repos.fleet); err != nil {
		log.Error(ctx, "initial fleet sync failed", err)
		return nil, err
	}

	// matcher
	bookingEvents := &bookingStatusFanout{feed: feed}
	if events != nil {
		bookingEvents.broker = events
	}
	bookings := matcher.New(fleet, s.repos.bookings, matcher.Policy{
		InitialRadiusKm: cfg.Matcher.InitialRadiusKm,
		RadiusSteps:     cfg.Matcher.RadiusSteps,
		MaxAttempts:     cfg.Matcher.MaxAttempts,
		Budget:          cfg.Matcher.Budget,
		AvgSpeedKmh:     cfg.Matcher.AvgSpeedKmh,
		CostWeight:      cfg.Matcher.CostWeight,
	}, log,
		matcher.WithPublisher(bookingEvents),
		matcher.WithCutoff(matcher.WindowCutoff{Window: cfg.Matcher.CancelWindow}),
	)
	if _, err = bookings.RestoreHolds(ctx); err != nil {
		log.Error(ctx, "failed to restore reservation holds", err)
		return nil, err
	}

	// notifier + sos
	contactNotifier := notifier.New(channel, dedup, notifier.Options{
		Retry: notifier.RetryPolicy{
			Attempts: cfg.Notifier.Attempts,
			Base:     cfg.Notifier.BaseBackoff,
			Cap:      cfg.Notifier.MaxBackoff,
		},
		Parallelism: cfg.Notifier.Parallelism,
	}, log)

	sosOpts := sos.Options{
		Broadcaster: feed,
		StallAfter:  cfg.SOS.StallAfter,
	}
	if cfg.ExternalAPI.LocationIQapiKey != "" {
		sosOpts.Geocoder = locationIQ.New(cfg.ExternalAPI.LocationIQapiKey, cfg.ExternalAPI.LocationIQBaseURL, cfg.ExternalAPI.Timeout)
	}
	if events != nil {
		sosOpts.Publisher = events
	}
	dispatcher := sos.New(s.repos.events, s.repos.contacts, contactNotifier, bookings, sosOpts, log)

	// alerts
	var alertPublisher alert.Publisher
	if events != nil {
		alertPublisher = events
	}
	alerts := alert.New(s.repos.alerts, feed, alertPublisher, alert.Options{
		DefaultRadiusKm: cfg.Alerts.DefaultRadiusKm,
		SnapshotTTL:     cfg.Alerts.SnapshotTTL,
	}, log)

	dir := directory.New(s.repos.directory, cfg.Directory.CacheTTL, log)
	contactBook := contacts.New(s.repos.contacts, log)
	planner := route.New(alerts, cfg.Matcher.AvgSpeedKmh, log)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	// scheduler
	s.cron = scheduler.NewCron(time.UTC, log)
	jobs := []struct {
		name, spec string
		job        scheduler.Job
	}{
		{types.ActionRegistrySync, cfg.Scheduler.FeedSync, func(ctx context.Context) error {
			return fleet.Sync(ctx, s.repos.fleet)
		}},
		{types.ActionSweepHolds, cfg.Scheduler.HoldSweep, func(ctx context.Context) error {
			if n := fleet.SweepExpired(ctx); n > 0 {
				log.Info(ctx, "expired reservation holds released", "count", n)
			}
			return nil
		}},
		{types.ActionCompleteBooking, cfg.Scheduler.BookingSweep, func(ctx context.Context) error {
			_, err := bookings.CompleteStale(ctx, cfg.Matcher.MaxServiceTime)
			return err
		}},
		{types.ActionResumeSOS, cfg.Scheduler.SOSResume, func(ctx context.Context) error {
			_, err := dispatcher.ResumeStalled(ctx)
			return err
		}},
	}
	for _, j := range jobs {
		if _, err = s.cron.Add(j.name, j.spec, j.job); err != nil {
			log.Error(ctx, "failed to schedule job", err, "job", j.name)
			return nil, err
		}
	}

	// http
	mwOpts := []middleware.Option{middleware.WithAuthRequired(cfg.Auth.Enabled)}
	if cfg.RateLimit.Rate != "" {
		limiter, err := middleware.NewRateLimiter(cfg.RateLimit.Rate)
		if err != nil {
			log.Error(ctx, "invalid rate limit", err, "rate", cfg.RateLimit.Rate)
			return nil, err
		}
		mwOpts = append(mwOpts, middleware.WithRateLimiter(limiter))
	}
	mid := middleware.NewMiddleware(tokens, log, mwOpts...)

	s.httpServer, err = server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ServiceName:  cfg.Mode.String(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, server.Handlers{
		Health:     handler.NewHealth(cfg.Mode.String(), log),
		Ambulance:  handler.NewAmbulance(fleet, bookings, log),
		Emergency:  handler.NewEmergency(dispatcher, log),
		Alert:      handler.NewAlert(alerts, log),
		Directory:  handler.NewDirectory(dir, log),
		Contacts:   handler.NewContacts(contactBook, log),
		Navigation: handler.NewNavigation(planner, log),
		Feed:       feed,
	}, mid, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		return nil, err
	}

	return s, nil
}

func (s *EmergencyService) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	s.cron.Start()
	s.httpServer.Run(ctx, errCh)
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "emergency service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "emergency service started", "storage", s.cfg.Storage.Driver, "notifier_channel", s.cfg.Notifier.Channel)

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

func (s *EmergencyService) close(ctx context.Context) {
	ctx = wrap.WithAction(context.WithoutCancel(ctx), "emergency_service_close")

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.cron != nil {
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		s.cron.Stop(stopCtx)
		cancel()
	}

	if s.hub != nil {
		s.hub.Close()
	}

	if s.rabbit != nil {
		closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := s.rabbit.Close(closeCtx); err != nil {
			s.log.Warn(ctx, "Failed to close rabbitmq", "error", err.Error())
		}
		cancel()
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.Warn(ctx, "Failed to close redis", "error", err.Error())
		}
	}

	if s.repos != nil {
		s.repos.close()
	}
}

// bookingStatusFanout sends booking transitions to the broker and the live feed.
type bookingStatusFanout struct {
	broker matcher.Publisher
	feed   *wshandler.Feed
}

func (p *bookingStatusFanout) PublishBookingStatus(ctx context.Context, msg models.BookingStatusMessage) error {
	p.feed.Broadcast(ctx, models.FeedMessage{Type: types.FeedBookingStatus, Data: msg})

	if p.broker == nil {
		return nil
	}
	if err := p.broker.PublishBookingStatus(ctx, msg); err != nil {
		return fmt.Errorf("publish booking %s status: %w", msg.BookingID, err)
	}
	return nil
}
