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
)

const alertColumns = `
    id, title, description, alert_type, severity, affected_area,
    latitude, longitude, address, radius_km, issued_at, expires_at, safety_tips`

type AlertRepo struct {
	db *pgxpool.Pool
}

func NewAlertRepo(db *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{db: db}
}

// Upsert stores the alert, replacing any earlier version with the same id.
func (r *AlertRepo) Upsert(ctx context.Context, a *models.DisasterAlert) (err error) {
	const op = "alertRepo.Upsert"
	defer observe(op, time.Now(), &err)

	query := `
        INSERT INTO disaster_alerts (` + alertColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            description = EXCLUDED.description,
            alert_type = EXCLUDED.alert_type,
            severity = EXCLUDED.severity,
            affected_area = EXCLUDED.affected_area,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            address = EXCLUDED.address,
            radius_km = EXCLUDED.radius_km,
            issued_at = EXCLUDED.issued_at,
            expires_at = EXCLUDED.expires_at,
            safety_tips = EXCLUDED.safety_tips;`

	_, err = TxorDB(ctx, r.db).Exec(ctx, query,
		a.ID, a.Title, a.Description, a.Type, a.Severity, a.AffectedArea,
		a.Coordinates.Latitude, a.Coordinates.Longitude, a.Coordinates.Address, a.RadiusKm,
		a.IssuedAt, a.ExpiresAt, textArray(a.SafetyTips),
	)
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (r *AlertRepo) Get(ctx context.Context, id string) (_ *models.DisasterAlert, err error) {
	const op = "alertRepo.Get"
	defer observe(op, time.Now(), &err)

	a, err := scanAlert(TxorDB(ctx, r.db).QueryRow(ctx, `SELECT `+alertColumns+` FROM disaster_alerts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrAlertNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (r *AlertRepo) List(ctx context.Context) (_ []models.DisasterAlert, err error) {
	const op = "alertRepo.List"
	defer observe(op, time.Now(), &err)

	rows, err := TxorDB(ctx, r.db).Query(ctx, `SELECT `+alertColumns+` FROM disaster_alerts ORDER BY issued_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.DisasterAlert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

func scanAlert(row pgx.Row) (*models.DisasterAlert, error) {
	var a models.DisasterAlert
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.Type, &a.Severity, &a.AffectedArea,
		&a.Coordinates.Latitude, &a.Coordinates.Longitude, &a.Coordinates.Address, &a.RadiusKm,
		&a.IssuedAt, &a.ExpiresAt, &a.SafetyTips,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
