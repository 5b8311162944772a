package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrExists   = errors.New("account already exists")
	ErrNotFound = errors.New("account not found")
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, email, passwordHash, role string) (*Account, error) {
	const q = `
INSERT INTO accounts (id, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password_hash, role, created_at
`
	a := &Account{}
	err := r.db.QueryRow(ctx, q, uuid.NewString(), email, passwordHash, role).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrExists
		}
		return nil, err
	}
	return a, nil
}

func (r *Repository) FindByEmailRole(ctx context.Context, email, role string) (*Account, error) {
	const q = `
SELECT id, email, password_hash, role, created_at
FROM accounts
WHERE email = $1 AND role = $2
`
	a := &Account{}
	err := r.db.QueryRow(ctx, q, email, role).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
