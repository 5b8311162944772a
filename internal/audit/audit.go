package audit

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Insert records a status change in the same transaction as the change
// itself, so the trail can never disagree with the bookings table.
func Insert(ctx context.Context, tx pgx.Tx, bookingID, actor, fromStatus, toStatus string) error {
	const q = `
INSERT INTO booking_audit (booking_id, actor, from_status, to_status)
VALUES ($1, $2, $3, $4)
`
	_, err := tx.Exec(ctx, q, bookingID, actor, fromStatus, toStatus)
	return err
}
