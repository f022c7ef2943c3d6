package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/postgres"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/trm"
)

const sosColumns = `
    id, requester_id, latitude, longitude, address, emergency_type, status,
    booking_id, fan_out, warnings, failure_reason, occurred_at, updated_at, resolved_at`

type SOSRepo struct {
	db *pgxpool.Pool
	tx trm.TxManager
}

func NewSOSRepo(db *pgxpool.Pool, tx trm.TxManager) *SOSRepo {
	return &SOSRepo{db: db, tx: tx}
}

func (r *SOSRepo) Create(ctx context.Context, e *models.SOSEvent) (err error) {
	const op = "sosRepo.Create"
	defer observe(op, time.Now(), &err)

	query := `
        INSERT INTO sos_events (
            id, requester_id, latitude, longitude, address, emergency_type, status,
            booking_id, fan_out, warnings, failure_reason, occurred_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`

	_, err = TxorDB(ctx, r.db).Exec(ctx, query,
		e.ID, e.RequesterID, e.Location.Latitude, e.Location.Longitude, e.Location.Address,
		e.EmergencyType, e.Status, e.BookingID, e.FanOut, textArray(e.Warnings), e.FailureReason,
		e.Timestamp, e.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return types.ErrStaleState
		}
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (r *SOSRepo) Get(ctx context.Context, id string) (_ *models.SOSEvent, err error) {
	const op = "sosRepo.Get"
	defer observe(op, time.Now(), &err)

	row := TxorDB(ctx, r.db).QueryRow(ctx, `SELECT `+sosColumns+` FROM sos_events WHERE id = $1`, id)
	e, err := scanSOS(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrEventNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

func (r *SOSRepo) Transition(ctx context.Context, id string, from types.SOSStatus, mutate func(e *models.SOSEvent)) (*models.SOSEvent, error) {
	const op = "sosRepo.Transition"

	var out *models.SOSEvent
	err := r.tx.Do(ctx, func(ctx context.Context) error {
		row := TxorDB(ctx, r.db).QueryRow(ctx, `SELECT `+sosColumns+` FROM sos_events WHERE id = $1 FOR UPDATE`, id)
		e, err := scanSOS(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return types.ErrEventNotFound
			}
			return fmt.Errorf("%s: lock: %w", op, err)
		}
		if e.Status != from {
			return types.ErrStaleState
		}

		mutate(e)
		if e.Status != from && !from.CanTransition(e.Status) {
			return fmt.Errorf("%s: %s -> %s: %w", op, from, e.Status, types.ErrConflict)
		}

		if err := r.update(ctx, e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SOSRepo) update(ctx context.Context, e *models.SOSEvent) (err error) {
	const op = "sosRepo.update"
	defer observe(op, time.Now(), &err)

	query := `
        UPDATE sos_events
        SET address = $2,
            status = $3,
            booking_id = $4,
            fan_out = $5,
            warnings = $6,
            failure_reason = $7,
            updated_at = $8,
            resolved_at = $9
        WHERE id = $1;`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query,
		e.ID, e.Location.Address, e.Status, e.BookingID, e.FanOut, textArray(e.Warnings),
		e.FailureReason, e.UpdatedAt, e.ResolvedAt,
	)
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}
	if tag.RowsAffected() == 0 {
		return types.ErrEventNotFound
	}
	return nil
}

func (r *SOSRepo) ListByRequester(ctx context.Context, userID string, limit int) (_ []models.SOSEvent, err error) {
	const op = "sosRepo.ListByRequester"
	defer observe(op, time.Now(), &err)

	query := `SELECT ` + sosColumns + `
        FROM sos_events
        WHERE requester_id = $1
        ORDER BY occurred_at DESC
        LIMIT $2;`

	return r.list(ctx, op, query, userID, limit)
}

// ListStalled returns non-terminal events not touched since before.
func (r *SOSRepo) ListStalled(ctx context.Context, before time.Time) (_ []models.SOSEvent, err error) {
	const op = "sosRepo.ListStalled"
	defer observe(op, time.Now(), &err)

	query := `SELECT ` + sosColumns + `
        FROM sos_events
        WHERE status NOT IN ('Resolved', 'Failed') AND updated_at < $1
        ORDER BY updated_at;`

	return r.list(ctx, op, query, before)
}

func (r *SOSRepo) list(ctx context.Context, op, query string, args ...any) ([]models.SOSEvent, error) {
	rows, err := TxorDB(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.SOSEvent, 0)
	for rows.Next() {
		e, err := scanSOS(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

func scanSOS(row pgx.Row) (*models.SOSEvent, error) {
	var (
		e      models.SOSEvent
		fanOut []byte
	)
	err := row.Scan(
		&e.ID, &e.RequesterID, &e.Location.Latitude, &e.Location.Longitude, &e.Location.Address,
		&e.EmergencyType, &e.Status, &e.BookingID, &fanOut, &e.Warnings, &e.FailureReason,
		&e.Timestamp, &e.UpdatedAt, &e.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(fanOut) > 0 {
		e.FanOut = &models.FanOutResult{}
		if err := json.Unmarshal(fanOut, e.FanOut); err != nil {
			return nil, fmt.Errorf("decode fan_out: %w", err)
		}
	}
	if len(e.Warnings) == 0 {
		e.Warnings = nil
	}
	return &e, nil
}

// textArray keeps NOT NULL text[] columns from receiving a nil slice.
func textArray(w []string) []string {
	if w == nil {
		return []string{}
	}
	return w
}
