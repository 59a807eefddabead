package repository

import (
	"context"
	"time"

	"github.com/ganot/shipdash/internal/domain/activity"
)

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
	List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// APIKeyRepository manages dashboard API keys. Only hashes are stored.
type APIKeyRepository interface {
	Create(ctx context.Context, tenantID, description string) (string, error)
	Add(ctx context.Context, token, tenantID, description string) error
	ResolveTenant(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	List(ctx context.Context, tenantID string) ([]APIKey, error)
}

// APIKey describes a stored key without revealing it.
type APIKey struct {
	Hash        string     `json:"hash"`
	TenantID    string     `json:"tenant_id"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsed    *time.Time `json:"last_used,omitempty"`
}
