package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("offering not found")

	// ErrNameTaken: offering names are unique because bookings snapshot
	// offerings by name.
	ErrNameTaken = errors.New("offering name already in use")
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Offering, error) {
	const q = `
SELECT id, name, price, duration_hours, description, created_at, updated_at
FROM offerings
ORDER BY created_at DESC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Offering
	for rows.Next() {
		var o Offering
		if err := rows.Scan(
			&o.ID, &o.Name, &o.Price, &o.Duration, &o.Description, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) GetByName(ctx context.Context, name string) (*Offering, error) {
	const q = `
SELECT id, name, price, duration_hours, description, created_at, updated_at
FROM offerings
WHERE name = $1
`
	o := &Offering{}
	err := r.db.QueryRow(ctx, q, name).Scan(
		&o.ID, &o.Name, &o.Price, &o.Duration, &o.Description, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *Repository) Create(ctx context.Context, o *Offering) (*Offering, error) {
	const q = `
INSERT INTO offerings (id, name, price, duration_hours, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, price, duration_hours, description, created_at, updated_at
`
	out := &Offering{}
	err := r.db.QueryRow(ctx, q, uuid.NewString(), o.Name, o.Price, o.Duration, o.Description).Scan(
		&out.ID, &out.Name, &out.Price, &out.Duration, &out.Description, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, id string, o *Offering) (*Offering, error) {
	const q = `
UPDATE offerings
SET name = $1, price = $2, duration_hours = $3, description = $4, updated_at = NOW()
WHERE id = $5
RETURNING id, name, price, duration_hours, description, created_at, updated_at
`
	out := &Offering{}
	err := r.db.QueryRow(ctx, q, o.Name, o.Price, o.Duration, o.Description, id).Scan(
		&out.ID, &out.Name, &out.Price, &out.Duration, &out.Description, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM offerings WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
