package booking

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bikeshop/internal/audit"
	"bikeshop/pkg/db"
)

var ErrNotFound = errors.New("booking not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `id, email, name, phone, address, service, service_details, date, booking_date, status, "timestamp", created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	b := &Booking{}
	var details []byte
	if err := row.Scan(
		&b.ID, &b.Email, &b.Name, &b.Phone, &b.Address, &b.Service, &details,
		&b.Date, &b.BookingDate, &b.Status, &b.Timestamp, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &b.ServiceDetails); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]Booking, error) {
	const q = `
SELECT ` + bookingColumns + `
FROM bookings
ORDER BY created_at DESC
`
	return r.list(ctx, q)
}

func (r *Repository) ListByEmail(ctx context.Context, email string) ([]Booking, error) {
	const q = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE email = $1
ORDER BY created_at DESC
`
	return r.list(ctx, q, email)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]Booking, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	const q = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE id = $1
`
	b, err := scanBooking(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *Repository) Insert(ctx context.Context, b *Booking) (*Booking, error) {
	const q = `
INSERT INTO bookings (id, email, name, phone, address, service, service_details, date, booking_date, status, "timestamp")
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + bookingColumns + `
`
	details, err := json.Marshal(b.ServiceDetails)
	if err != nil {
		return nil, err
	}
	return scanBooking(r.db.QueryRow(ctx, q,
		b.ID, b.Email, b.Name, b.Phone, b.Address, b.Service, details,
		b.Date, b.BookingDate, string(b.Status), b.Timestamp,
	))
}

// UpdateStatus persists the transition and its audit row in one tx. The
// update is a single-row last-write-wins write; concurrent transitions to
// the same booking simply overwrite each other.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, actor string) (*Booking, error) {
	var out *Booking
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var from string
		const qSel = `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRow(ctx, qSel, id).Scan(&from); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		const qUpd = `
UPDATE bookings
SET status = $1
WHERE id = $2
RETURNING ` + bookingColumns + `
`
		b, err := scanBooking(tx.QueryRow(ctx, qUpd, string(status), id))
		if err != nil {
			return err
		}

		if err := audit.Insert(ctx, tx, id, actor, from, string(status)); err != nil {
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

func (r *Repository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM bookings WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
