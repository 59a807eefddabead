package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ganot/shipdash/internal/repository"
	"github.com/google/uuid"
)

// TokenPrefix marks tokens issued by Create.
const TokenPrefix = "sd_"

// APIKeyRepository implements repository.APIKeyRepository for SQLite
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// HashToken returns the stored form of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create issues a new random token for tenantID and returns it. The token
// itself is not stored and cannot be recovered later.
func (r *APIKeyRepository) Create(ctx context.Context, tenantID, description string) (string, error) {
	token := TokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := r.Add(ctx, token, tenantID, description); err != nil {
		return "", err
	}
	return token, nil
}

// Add stores a caller-chosen token for tenantID.
func (r *APIKeyRepository) Add(ctx context.Context, token, tenantID, description string) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(tenantID) == "" {
		return repository.ErrInvalidInput
	}

	query := `INSERT INTO api_keys (key_hash, tenant_id, created_at, description) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, HashToken(token), tenantID, time.Now().UTC(), description)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// ResolveTenant returns the tenant that owns token and stamps its last use.
func (r *APIKeyRepository) ResolveTenant(ctx context.Context, token string) (string, error) {
	hash := HashToken(token)

	var tenantID string
	err := r.db.QueryRowContext(ctx, `SELECT tenant_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return tenantID, nil
}

// Revoke deletes token.
func (r *APIKeyRepository) Revoke(ctx context.Context, token string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE key_hash = ?`, HashToken(token))
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns the keys of tenantID, newest first.
func (r *APIKeyRepository) List(ctx context.Context, tenantID string) ([]repository.APIKey, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key_hash, tenant_id, COALESCE(description, ''), created_at, last_used
		FROM api_keys
		WHERE tenant_id = ?
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	keys := []repository.APIKey{}
	for rows.Next() {
		var key repository.APIKey
		var lastUsed sql.NullTime
		if err := rows.Scan(&key.Hash, &key.TenantID, &key.Description, &key.CreatedAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		if lastUsed.Valid {
			t := lastUsed.Time
			key.LastUsed = &t
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api key rows: %w", err)
	}
	return keys, nil
}
