package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

type ContactRepo struct {
	db *pgxpool.Pool
}

func NewContactRepo(db *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{db: db}
}

func (r *ContactRepo) Create(ctx context.Context, c *models.EmergencyContact) (err error) {
	const op = "contactRepo.Create"
	defer observe(op, time.Now(), &err)

	query := `
        INSERT INTO emergency_contacts (id, owner_id, name, phone, type, created_at)
        VALUES ($1, $2, $3, $4, $5, $6);`

	if _, err = TxorDB(ctx, r.db).Exec(ctx, query, c.ID, c.OwnerID, c.Name, c.Phone, c.Type, c.CreatedAt); err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// List returns the owner's contacts in the order they were added.
func (r *ContactRepo) List(ctx context.Context, ownerID string) (_ []models.EmergencyContact, err error) {
	const op = "contactRepo.List"
	defer observe(op, time.Now(), &err)

	query := `
        SELECT id, owner_id, name, phone, type, created_at
        FROM emergency_contacts
        WHERE owner_id = $1
        ORDER BY created_at, id;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.EmergencyContact, 0)
	for rows.Next() {
		var c models.EmergencyContact
		if err = rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

func (r *ContactRepo) Delete(ctx context.Context, ownerID, contactID string) (err error) {
	const op = "contactRepo.Delete"
	defer observe(op, time.Now(), &err)

	tag, err := TxorDB(ctx, r.db).Exec(ctx, `DELETE FROM emergency_contacts WHERE id = $1 AND owner_id = $2;`, contactID, ownerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrContactNotFound
	}
	return nil
}
