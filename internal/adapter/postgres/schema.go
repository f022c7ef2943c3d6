package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/seed"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/trm"
)

const schema = `
CREATE TABLE IF NOT EXISTS ambulances (
    id                     TEXT PRIMARY KEY,
    name                   TEXT NOT NULL,
    type                   TEXT NOT NULL,
    latitude               DOUBLE PRECISION NOT NULL,
    longitude              DOUBLE PRECISION NOT NULL,
    address                TEXT NOT NULL DEFAULT '',
    phone                  TEXT NOT NULL DEFAULT '',
    rating                 DOUBLE PRECISION NOT NULL DEFAULT 0,
    available              BOOLEAN NOT NULL DEFAULT TRUE,
    cost                   NUMERIC(10,2),
    dispatch_delay_minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bookings (
    id                     TEXT PRIMARY KEY,
    requester_id           TEXT NOT NULL,
    pickup_latitude        DOUBLE PRECISION NOT NULL,
    pickup_longitude       DOUBLE PRECISION NOT NULL,
    pickup_address         TEXT NOT NULL DEFAULT '',
    preferred_ambulance_id TEXT NOT NULL DEFAULT '',
    idempotency_key        TEXT UNIQUE,
    status                 TEXT NOT NULL,
    ambulance_id           TEXT NOT NULL DEFAULT '',
    reservation_token      TEXT NOT NULL DEFAULT '',
    distance_km            DOUBLE PRECISION NOT NULL DEFAULT 0,
    eta_minutes            DOUBLE PRECISION NOT NULL DEFAULT 0,
    estimated_arrival      TIMESTAMPTZ,
    failure_reason         TEXT NOT NULL DEFAULT '',
    requested_at           TIMESTAMPTZ NOT NULL,
    matched_at             TIMESTAMPTZ,
    confirmed_at           TIMESTAMPTZ,
    cancelled_at           TIMESTAMPTZ,
    failed_at              TIMESTAMPTZ,
    completed_at           TIMESTAMPTZ,
    updated_at             TIMESTAMPTZ NOT NULL
);
ALTER TABLE bookings ADD COLUMN IF NOT EXISTS completed_at TIMESTAMPTZ;
CREATE INDEX IF NOT EXISTS bookings_live_idx ON bookings (status) WHERE status IN ('Pending', 'Matched', 'Confirmed');

CREATE TABLE IF NOT EXISTS sos_events (
    id             TEXT PRIMARY KEY,
    requester_id   TEXT NOT NULL,
    latitude       DOUBLE PRECISION NOT NULL,
    longitude      DOUBLE PRECISION NOT NULL,
    address        TEXT NOT NULL DEFAULT '',
    emergency_type TEXT NOT NULL,
    status         TEXT NOT NULL,
    booking_id     TEXT NOT NULL DEFAULT '',
    fan_out        JSONB,
    warnings       TEXT[] NOT NULL DEFAULT '{}',
    failure_reason TEXT NOT NULL DEFAULT '',
    occurred_at    TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL,
    resolved_at    TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS sos_events_requester_idx ON sos_events (requester_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS sos_events_open_idx ON sos_events (updated_at) WHERE status NOT IN ('Resolved', 'Failed');

CREATE TABLE IF NOT EXISTS emergency_contacts (
    id         TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL,
    name       TEXT NOT NULL,
    phone      TEXT NOT NULL,
    type       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS emergency_contacts_owner_idx ON emergency_contacts (owner_id, created_at);

CREATE TABLE IF NOT EXISTS disaster_alerts (
    id            TEXT PRIMARY KEY,
    title         TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    alert_type    TEXT NOT NULL DEFAULT '',
    severity      TEXT NOT NULL,
    affected_area TEXT NOT NULL DEFAULT '',
    latitude      DOUBLE PRECISION NOT NULL,
    longitude     DOUBLE PRECISION NOT NULL,
    address       TEXT NOT NULL DEFAULT '',
    radius_km     DOUBLE PRECISION NOT NULL,
    issued_at     TIMESTAMPTZ NOT NULL,
    expires_at    TIMESTAMPTZ NOT NULL,
    safety_tips   TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS hospitals (
    id                 TEXT PRIMARY KEY,
    name               TEXT NOT NULL,
    address            TEXT NOT NULL DEFAULT '',
    latitude           DOUBLE PRECISION NOT NULL,
    longitude          DOUBLE PRECISION NOT NULL,
    phone              TEXT NOT NULL DEFAULT '',
    specialties        TEXT[] NOT NULL DEFAULT '{}',
    emergency_services BOOLEAN NOT NULL DEFAULT TRUE,
    rating             DOUBLE PRECISION NOT NULL DEFAULT 0,
    departments        TEXT[] NOT NULL DEFAULT '{}',
    current_wait_min   INTEGER NOT NULL DEFAULT 0,
    beds_available     INTEGER NOT NULL DEFAULT 0,
    accepts_insurance  BOOLEAN NOT NULL DEFAULT TRUE,
    emergency_contact  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS news (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    summary      TEXT NOT NULL DEFAULT '',
    content      TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL,
    location     TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ NOT NULL,
    image_url    TEXT NOT NULL DEFAULT '',
    source       TEXT NOT NULL DEFAULT '',
    priority     TEXT NOT NULL
);
`

// Migrate creates the schema and loads the demo data into an empty database.
func Migrate(ctx context.Context, db *pgxpool.Pool, tx trm.TxManager, l logger.Logger) error {
	const op = "postgres.Migrate"
	ctx = wrap.WithAction(ctx, "migrate")

	if _, err := db.Exec(ctx, schema); err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: create schema: %w", op, err))
	}

	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM ambulances`).Scan(&count); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: count ambulances: %w", op, err))
	}
	if count > 0 {
		return nil
	}

	err := tx.Do(ctx, func(ctx context.Context) error {
		fleet := NewFleetRepo(db)
		for _, a := range seed.Ambulances() {
			if err := fleet.Upsert(ctx, a); err != nil {
				return err
			}
		}

		dir := NewDirectoryRepo(db)
		for _, h := range seed.Hospitals() {
			if err := dir.insertHospital(ctx, h); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		for _, n := range seed.News(now) {
			if err := dir.insertNews(ctx, n); err != nil {
				return err
			}
		}

		alerts := NewAlertRepo(db)
		for _, a := range seed.Alerts(now) {
			if err := alerts.Upsert(ctx, &a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: seed: %w", op, err))
	}

	l.Info(ctx, "database seeded with demo data")
	return nil
}
