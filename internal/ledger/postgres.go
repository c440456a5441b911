package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresJournal persists points entries in PostgreSQL.
type PostgresJournal struct {
	db *pgxpool.Pool
}

// NewPostgresJournal constructs a Postgres-backed journal.
func NewPostgresJournal(db *pgxpool.Pool) *PostgresJournal {
	return &PostgresJournal{db: db}
}

// Record inserts the entry inside a transaction, returning the stored entry
// with ErrDuplicateEntry when the client transaction id was already used.
func (j *PostgresJournal) Record(ctx context.Context, entry Entry) (Entry, error) {
	if err := validate(entry); err != nil {
		return Entry{}, err
	}

	tx, err := j.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Entry{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	const existingQuery = `
        SELECT id, client_tx_id, kind, user_id, reward_id, points, balance_after, created_at
        FROM points_entries WHERE client_tx_id = $1 AND kind = $2`
	existing, err := scanEntry(tx.QueryRow(ctx, existingQuery, entry.ClientTxID, string(entry.Kind)))
	if err == nil {
		return existing, ErrDuplicateEntry
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, err
	}

	id := uuid.New()
	if entry.ID != "" {
		if parsed, perr := uuid.Parse(entry.ID); perr == nil {
			id = parsed
		}
	}
	entry.ID = id.String()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const insert = `
        INSERT INTO points_entries (id, client_tx_id, kind, user_id, reward_id, points, balance_after, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.Exec(ctx, insert, id, entry.ClientTxID, string(entry.Kind), entry.UserID,
		entry.RewardID, entry.Points, entry.BalanceAfter, entry.CreatedAt); err != nil {
		return Entry{}, fmt.Errorf("insert points entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// List returns the user's entries, newest first.
func (j *PostgresJournal) List(ctx context.Context, userID string) ([]Entry, error) {
	const query = `
        SELECT id, client_tx_id, kind, user_id, reward_id, points, balance_after, created_at
        FROM points_entries WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := j.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TotalRedeemed sums the points spent on redemptions.
func (j *PostgresJournal) TotalRedeemed(ctx context.Context) (int64, error) {
	const query = `SELECT COALESCE(-SUM(points), 0) FROM points_entries WHERE kind = $1`
	var total int64
	if err := j.db.QueryRow(ctx, query, string(KindRedemption)).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e    Entry
		id   uuid.UUID
		kind string
	)
	if err := row.Scan(&id, &e.ClientTxID, &kind, &e.UserID, &e.RewardID, &e.Points, &e.BalanceAfter, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	e.ID = id.String()
	e.Kind = Kind(kind)
	return e, nil
}
