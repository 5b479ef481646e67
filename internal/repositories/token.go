package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/artx/internal/models"
	"github.com/desertthunder/artx/internal/shared"
)

// TokenRepository persists the single OAuth credential with replace-only
// semantics: at most one row exists at any transaction boundary.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Replace atomically deletes all stored credentials and inserts the new one.
func (r *TokenRepository) Replace(cred *models.Credential) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM auth_tokens"); err != nil {
		return fmt.Errorf("failed to delete old credentials: %w", err)
	}

	query := `
		INSERT INTO auth_tokens (access_token, refresh_token, expires_in, scope, token_type, issued_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query, cred.AccessToken, cred.RefreshToken, cred.ExpiresIn, cred.Scope, cred.TokenType, cred.IssuedAt)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credential replace: %w", err)
	}

	return nil
}

// Get returns the stored credential, or [shared.ErrNoCredential] if the user
// never logged in.
func (r *TokenRepository) Get() (*models.Credential, error) {
	query := `
		SELECT access_token, refresh_token, expires_in, scope, token_type, issued_at
		FROM auth_tokens
		LIMIT 1
	`

	var cred models.Credential
	err := r.db.QueryRow(query).Scan(
		&cred.AccessToken,
		&cred.RefreshToken,
		&cred.ExpiresIn,
		&cred.Scope,
		&cred.TokenType,
		&cred.IssuedAt,
	)
	if err == sql.ErrNoRows {
		return nil, shared.ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	return &cred, nil
}
