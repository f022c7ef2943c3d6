package postgres

import (
	"context"
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

const bookingColumns = `
    id, requester_id, pickup_latitude, pickup_longitude, pickup_address,
    preferred_ambulance_id, COALESCE(idempotency_key, ''), status, ambulance_id, reservation_token,
    distance_km, eta_minutes, estimated_arrival, failure_reason,
    requested_at, matched_at, confirmed_at, cancelled_at, failed_at, completed_at, updated_at`

type BookingRepo struct {
	db *pgxpool.Pool
	tx trm.TxManager
}

func NewBookingRepo(db *pgxpool.Pool, tx trm.TxManager) *BookingRepo {
	return &BookingRepo{db: db, tx: tx}
}

func (r *BookingRepo) Create(ctx context.Context, b *models.Booking) (err error) {
	const op = "bookingRepo.Create"
	defer observe(op, time.Now(), &err)

	query := `
        INSERT INTO bookings (
            id, requester_id, pickup_latitude, pickup_longitude, pickup_address,
            preferred_ambulance_id, idempotency_key, status, requested_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	_, err = TxorDB(ctx, r.db).Exec(ctx, query,
		b.ID, b.RequesterID, b.Pickup.Latitude, b.Pickup.Longitude, b.Pickup.Address,
		b.PreferredAmbulanceID, nullIfEmpty(b.IdempotencyKey), b.Status, b.RequestedAt, b.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			if b.IdempotencyKey != "" {
				return types.ErrIdempotencyKeyUsed
			}
			return types.ErrStaleState
		}
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (r *BookingRepo) Get(ctx context.Context, id string) (*models.Booking, error) {
	return r.getBy(ctx, "bookingRepo.Get", `WHERE id = $1`, id)
}

func (r *BookingRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error) {
	if key == "" {
		return nil, types.ErrBookingNotFound
	}
	return r.getBy(ctx, "bookingRepo.GetByIdempotencyKey", `WHERE idempotency_key = $1`, key)
}

// Transition locks the row, checks the expected status and writes the mutated booking back.
func (r *BookingRepo) Transition(ctx context.Context, id string, from types.BookingStatus, mutate func(b *models.Booking)) (*models.Booking, error) {
	const op = "bookingRepo.Transition"

	var out *models.Booking
	err := r.tx.Do(ctx, func(ctx context.Context) error {
		b, err := r.getBy(ctx, op, `WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		if b.Status != from {
			return types.ErrStaleState
		}

		mutate(b)
		if b.Status != from && !from.CanTransition(b.Status) {
			return fmt.Errorf("%s: %s -> %s: %w", op, from, b.Status, types.ErrConflict)
		}

		if err := r.update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingRepo) update(ctx context.Context, b *models.Booking) (err error) {
	const op = "bookingRepo.update"
	defer observe(op, time.Now(), &err)

	query := `
        UPDATE bookings
        SET status = $2,
            ambulance_id = $3,
            reservation_token = $4,
            distance_km = $5,
            eta_minutes = $6,
            estimated_arrival = $7,
            failure_reason = $8,
            matched_at = $9,
            confirmed_at = $10,
            cancelled_at = $11,
            failed_at = $12,
            completed_at = $13,
            updated_at = $14
        WHERE id = $1;`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query,
		b.ID, b.Status, b.AmbulanceID, b.ReservationToken, b.DistanceKm, b.ETAMinutes,
		b.EstimatedArrival, b.FailureReason, b.MatchedAt, b.ConfirmedAt, b.CancelledAt, b.FailedAt, b.CompletedAt, b.UpdatedAt,
	)
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}
	if tag.RowsAffected() == 0 {
		return types.ErrBookingNotFound
	}
	return nil
}

// ListByStatus returns bookings in any of statuses, oldest request first.
func (r *BookingRepo) ListByStatus(ctx context.Context, statuses ...types.BookingStatus) (_ []models.Booking, err error) {
	const op = "bookingRepo.ListByStatus"
	defer observe(op, time.Now(), &err)

	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}

	rows, err := TxorDB(ctx, r.db).Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE status = ANY($1) ORDER BY requested_at, id`, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Booking, 0)
	for rows.Next() {
		var b models.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanBooking(row pgx.Row, b *models.Booking) error {
	return row.Scan(
		&b.ID, &b.RequesterID, &b.Pickup.Latitude, &b.Pickup.Longitude, &b.Pickup.Address,
		&b.PreferredAmbulanceID, &b.IdempotencyKey, &b.Status, &b.AmbulanceID, &b.ReservationToken,
		&b.DistanceKm, &b.ETAMinutes, &b.EstimatedArrival, &b.FailureReason,
		&b.RequestedAt, &b.MatchedAt, &b.ConfirmedAt, &b.CancelledAt, &b.FailedAt, &b.CompletedAt, &b.UpdatedAt,
	)
}

func (r *BookingRepo) getBy(ctx context.Context, op, where string, arg any) (_ *models.Booking, err error) {
	defer observe(op, time.Now(), &err)

	var b models.Booking
	err = scanBooking(TxorDB(ctx, r.db).QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings `+where, arg), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrBookingNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}
