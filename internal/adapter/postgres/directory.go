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
)

const (
	hospitalColumns = `
    id, name, address, latitude, longitude, phone, specialties, emergency_services, rating,
    departments, current_wait_min, beds_available, accepts_insurance, emergency_contact`

	newsColumns = `
    id, title, summary, content, category, location, published_at, image_url, source, priority`
)

type DirectoryRepo struct {
	db *pgxpool.Pool
}

func NewDirectoryRepo(db *pgxpool.Pool) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

func (r *DirectoryRepo) ListHospitals(ctx context.Context) (_ []models.Hospital, err error) {
	const op = "directoryRepo.ListHospitals"
	defer observe(op, time.Now(), &err)

	rows, err := TxorDB(ctx, r.db).Query(ctx, `SELECT `+hospitalColumns+` FROM hospitals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Hospital, 0)
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

func (r *DirectoryRepo) GetHospital(ctx context.Context, id string) (_ *models.Hospital, err error) {
	const op = "directoryRepo.GetHospital"
	defer observe(op, time.Now(), &err)

	h, err := scanHospital(TxorDB(ctx, r.db).QueryRow(ctx, `SELECT `+hospitalColumns+` FROM hospitals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrHospitalNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return h, nil
}

func (r *DirectoryRepo) ListNews(ctx context.Context) (_ []models.NewsItem, err error) {
	const op = "directoryRepo.ListNews"
	defer observe(op, time.Now(), &err)

	rows, err := TxorDB(ctx, r.db).Query(ctx, `SELECT `+newsColumns+` FROM news ORDER BY published_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.NewsItem, 0)
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

func (r *DirectoryRepo) GetNews(ctx context.Context, id string) (_ *models.NewsItem, err error) {
	const op = "directoryRepo.GetNews"
	defer observe(op, time.Now(), &err)

	n, err := scanNews(TxorDB(ctx, r.db).QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNewsNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r *DirectoryRepo) insertHospital(ctx context.Context, h models.Hospital) error {
	query := `INSERT INTO hospitals (` + hospitalColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (id) DO NOTHING;`

	_, err := TxorDB(ctx, r.db).Exec(ctx, query,
		h.ID, h.Name, h.Address, h.Location.Latitude, h.Location.Longitude, h.Phone,
		textArray(h.Specialties), h.EmergencyServices, h.Rating, textArray(h.Departments),
		h.CurrentWaitMin, h.BedsAvailable, h.AcceptsInsurance, h.EmergencyContact,
	)
	if err != nil {
		return fmt.Errorf("insert hospital %s: %w", h.ID, err)
	}
	return nil
}

func (r *DirectoryRepo) insertNews(ctx context.Context, n models.NewsItem) error {
	query := `INSERT INTO news (` + newsColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO NOTHING;`

	_, err := TxorDB(ctx, r.db).Exec(ctx, query,
		n.ID, n.Title, n.Summary, n.Content, n.Category, n.Location, n.PublishedAt, n.ImageURL, n.Source, n.Priority,
	)
	if err != nil {
		return fmt.Errorf("insert news %s: %w", n.ID, err)
	}
	return nil
}

func scanHospital(row pgx.Row) (*models.Hospital, error) {
	var h models.Hospital
	err := row.Scan(
		&h.ID, &h.Name, &h.Address, &h.Location.Latitude, &h.Location.Longitude, &h.Phone,
		&h.Specialties, &h.EmergencyServices, &h.Rating, &h.Departments,
		&h.CurrentWaitMin, &h.BedsAvailable, &h.AcceptsInsurance, &h.EmergencyContact,
	)
	if err != nil {
		return nil, err
	}
	h.Location.Address = h.Address
	return &h, nil
}

func scanNews(row pgx.Row) (*models.NewsItem, error) {
	var n models.NewsItem
	err := row.Scan(
		&n.ID, &n.Title, &n.Summary, &n.Content, &n.Category, &n.Location,
		&n.PublishedAt, &n.ImageURL, &n.Source, &n.Priority,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
