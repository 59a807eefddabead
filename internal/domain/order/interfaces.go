package order

import (
	"context"

	"github.com/ganot/shipdash/internal/domain/activity"
	"github.com/ganot/shipdash/internal/odoo"
)

// Remote is the ERP surface the fetch pipeline reads from.
type Remote interface {
	Authenticate(ctx context.Context) (*odoo.Session, error)
	Call(ctx context.Context, sess *odoo.Session, req odoo.Request) ([]odoo.Record, error)
}

// ActivityLogger records fetch outcomes.
type ActivityLogger interface {
	LogActivity(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}
