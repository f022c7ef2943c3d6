package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

// FleetRepo is the persistent ambulance feed the registry syncs from.
type FleetRepo struct {
	db *pgxpool.Pool
}

func NewFleetRepo(db *pgxpool.Pool) *FleetRepo {
	return &FleetRepo{db: db}
}

func (r *FleetRepo) ListAmbulances(ctx context.Context) (_ []models.Ambulance, err error) {
	const op = "fleetRepo.ListAmbulances"
	defer observe(op, time.Now(), &err)

	query := `
        SELECT id, name, type, latitude, longitude, address, phone, rating,
               available, cost, dispatch_delay_minutes, updated_at
        FROM ambulances
        ORDER BY id;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Ambulance, 0)
	for rows.Next() {
		var (
			a    models.Ambulance
			cost decimal.NullDecimal
		)
		err = rows.Scan(
			&a.ID, &a.Name, &a.Type, &a.Location.Latitude, &a.Location.Longitude, &a.Location.Address,
			&a.Phone, &a.Rating, &a.Available, &cost, &a.DispatchDelayMin, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		if cost.Valid {
			a.Cost = &cost.Decimal
		}
		out = append(out, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

func (r *FleetRepo) Upsert(ctx context.Context, a models.Ambulance) (err error) {
	const op = "fleetRepo.Upsert"
	defer observe(op, time.Now(), &err)

	query := `
        INSERT INTO ambulances (id, name, type, latitude, longitude, address, phone, rating,
                                available, cost, dispatch_delay_minutes, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            type = EXCLUDED.type,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            address = EXCLUDED.address,
            phone = EXCLUDED.phone,
            rating = EXCLUDED.rating,
            available = EXCLUDED.available,
            cost = EXCLUDED.cost,
            dispatch_delay_minutes = EXCLUDED.dispatch_delay_minutes,
            updated_at = now();`

	var cost decimal.NullDecimal
	if a.Cost != nil {
		cost = decimal.NewNullDecimal(*a.Cost)
	}

	_, err = TxorDB(ctx, r.db).Exec(ctx, query,
		a.ID, a.Name, a.Type, a.Location.Latitude, a.Location.Longitude, a.Location.Address,
		a.Phone, a.Rating, a.Available, cost, a.DispatchDelayMin,
	)
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}
	return nil
}
