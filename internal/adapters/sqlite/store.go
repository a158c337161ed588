// Package sqlite provides a SQLite-backed implementation of the credential
// store port.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

// Store implements the credential store port for SQLite.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

var _ ports.CredentialStore = (*Store)(nil)

// NewStore opens the database and runs the schema migration.
func NewStore(storagePath string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	store := &Store{db: db, log: log}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// Close ensures the DB connection is closed gracefully.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS credentials (
			principal     TEXT PRIMARY KEY,
			access_token  TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			issued_at     INTEGER NOT NULL
		)
	`)
	return err
}

// Get returns the credential stored for the principal, or ErrUnauthorized
// when none exists.
func (s *Store) Get(ctx context.Context, principal string) (domain.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT access_token, refresh_token, issued_at FROM credentials WHERE principal = ?", principal)

	var cred domain.Credential
	var issuedAt int64
	if err := row.Scan(&cred.AccessToken, &cred.RefreshToken, &issuedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Credential{}, fmt.Errorf("no credential for principal %q: %w", principal, domain.ErrUnauthorized)
		}
		return domain.Credential{}, fmt.Errorf("failed to load credential: %w", err)
	}
	cred.IssuedAt = time.Unix(issuedAt, 0).UTC()

	return cred, nil
}

// Update upserts the credential for the principal and returns the stored
// value.
func (s *Store) Update(ctx context.Context, principal string, cred domain.Credential) (domain.Credential, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (principal, access_token, refresh_token, issued_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(principal) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			issued_at = excluded.issued_at
	`, principal, cred.AccessToken, cred.RefreshToken, cred.IssuedAt.Unix())
	if err != nil {
		return domain.Credential{}, fmt.Errorf("failed to store credential: %w", err)
	}

	s.log.Debug("credential stored", zap.String("principal", principal))
	return cred, nil
}
