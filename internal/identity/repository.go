package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// CredentialRepository persists login secrets.
type CredentialRepository interface {
	Create(ctx context.Context, cred Credential) error
	FindByEmail(ctx context.Context, email string) (Credential, error)
}

// PostgresRepository implements CredentialRepository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed credential repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a credential, reporting ErrAlreadyRegistered on conflict.
func (r *PostgresRepository) Create(ctx context.Context, cred Credential) error {
	_, err := r.db.Exec(ctx, `INSERT INTO credentials (email, password_hash, created_at) VALUES ($1, $2, $3)`,
		cred.Email, cred.PasswordHash, cred.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyRegistered
	}
	return err
}

// FindByEmail fetches a credential by its login email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Credential, error) {
	row := r.db.QueryRow(ctx, `SELECT email, password_hash, created_at FROM credentials WHERE email = $1`, email)
	var (
		cred      Credential
		createdAt time.Time
	)
	if err := row.Scan(&cred.Email, &cred.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, ErrCredentialNotFound
		}
		return Credential{}, err
	}
	cred.CreatedAt = createdAt.UTC()
	return cred, nil
}
