package microservices

import (
	"context"
	"fmt"
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/config"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/memory"
	repo "github.com/Psychoriddler/Emergilink-prototype/internal/adapter/postgres"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/seed"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/alert"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/contacts"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/directory"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/matcher"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/registry"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/sos"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/postgres"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/trm"
)

// repositories is one storage backend seen through the interfaces the services need.
type repositories struct {
	bookings  matcher.BookingRepo
	events    sos.EventRepo
	contacts  contacts.Repo
	alerts    alert.Repo
	directory directory.Repo
	fleet     registry.Feed

	db *postgres.PostgreDB
}

func (r *repositories) close() {
	if r.db != nil && r.db.Pool != nil {
		r.db.Pool.Close()
	}
}

func newRepositories(ctx context.Context, cfg config.Config, log logger.Logger) (*repositories, error) {
	switch cfg.Storage.Driver {
	case types.StoragePostgres:
		return newPostgresRepositories(ctx, cfg, log)
	case types.StorageMemory:
		return newMemoryRepositories(ctx)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func newPostgresRepositories(ctx context.Context, cfg config.Config, log logger.Logger) (*repositories, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	tx := trm.New(postgresDB.Pool)
	if err := repo.Migrate(ctx, postgresDB.Pool, tx, log); err != nil {
		postgresDB.Pool.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &repositories{
		bookings:  repo.NewBookingRepo(postgresDB.Pool, tx),
		events:    repo.NewSOSRepo(postgresDB.Pool, tx),
		contacts:  repo.NewContactRepo(postgresDB.Pool),
		alerts:    repo.NewAlertRepo(postgresDB.Pool),
		directory: repo.NewDirectoryRepo(postgresDB.Pool),
		fleet:     repo.NewFleetRepo(postgresDB.Pool),
		db:        postgresDB,
	}, nil
}

func newMemoryRepositories(ctx context.Context) (*repositories, error) {
	now := time.Now().UTC()

	alerts := memory.NewAlertRepo()
	for _, a := range seed.Alerts(now) {
		if err := alerts.Upsert(ctx, &a); err != nil {
			return nil, fmt.Errorf("seed alert %s: %w", a.ID, err)
		}
	}

	return &repositories{
		bookings:  memory.NewBookingRepo(),
		events:    memory.NewSOSRepo(),
		contacts:  memory.NewContactRepo(),
		alerts:    alerts,
		directory: memory.NewDirectoryRepo(seed.Hospitals(), seed.News(now)),
		fleet:     memory.NewFleet(seed.Ambulances()),
	}, nil
}
