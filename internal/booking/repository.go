package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asia-medicare/medicare_portal/internal/records"
)

// Repository persists submitted bookings.
type Repository interface {
	Create(ctx context.Context, b Booking) error
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	ListByDate(ctx context.Context, date string) ([]Booking, error)
	Count(ctx context.Context) (int64, error)
}

// PostgresRepository stores bookings in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const bookingColumns = `id, user_id, user_name, user_phone, service, date, time_slot, notes, status, created_at`

// Create inserts a booking record.
func (r *PostgresRepository) Create(ctx context.Context, b Booking) error {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, b.UserID, b.UserName, b.UserPhone, b.Service, b.Date, string(b.TimeSlot), b.Notes, string(b.Status), b.CreatedAt.UTC())
	return err
}

// ListByUser returns the user's bookings, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListByDate returns the bookings requested for date, oldest first.
func (r *PostgresRepository) ListByDate(ctx context.Context, date string) ([]Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE date = $1 ORDER BY created_at`, date)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// Count returns the number of stored bookings.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n)
	return n, err
}

func collect(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()
	out := make([]Booking, 0)
	for rows.Next() {
		var (
			b         Booking
			id        uuid.UUID
			slot      string
			status    string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &b.UserID, &b.UserName, &b.UserPhone, &b.Service, &b.Date, &slot, &b.Notes, &status, &createdAt); err != nil {
			return nil, err
		}
		b.ID = id.String()
		b.TimeSlot = TimeSlot(slot)
		b.Status = records.AppointmentStatus(status)
		b.CreatedAt = createdAt.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}
