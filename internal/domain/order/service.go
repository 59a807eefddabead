package order

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/ganot/shipdash/internal/domain/activity"
	"github.com/ganot/shipdash/internal/domain/workclock"
	"github.com/ganot/shipdash/internal/odoo"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	websiteFields = []string{"id", "name"}
	orderFields   = []string{
		"id",
		"name",
		"amount_untaxed",
		"amount_total",
		"date_order",
		"partner_id",
		"picking_ids",
		"website_id",
	}
	partnerFields = []string{"id", "city"}
	pickingFields = []string{"origin", "state"}

	confirmedStates = []string{"sale", "done"}
	closedPickings  = []string{"done", "cancel", "draft"}
)

// Service fetches pending orders from the ERP and builds dashboard views.
type Service struct {
	remote   Remote
	activity ActivityLogger
	opts     Options
	logger   *slog.Logger
}

// NewService creates a new order service. activity may be nil.
func NewService(remote Remote, activityLog ActivityLogger, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		remote:   remote,
		activity: activityLog,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// Websites returns the storefront names the service fetches.
func (s *Service) Websites() []string {
	out := make([]string, len(s.opts.Websites))
	copy(out, s.opts.Websites)
	return out
}

// FetchPending returns confirmed orders that still have an open shipment,
// in the order the ERP returned them.
func (s *Service) FetchPending(ctx context.Context, tenantID string) ([]SalesOrder, error) {
	fetchID := uuid.NewString()
	logger := s.logger.With("fetch_id", fetchID, "tenant_id", tenantID)
	started := s.opts.Now()

	rows, err := s.fetch(ctx, logger)
	elapsed := s.opts.Now().Sub(started)

	entry := &activity.ActivityEntry{
		FetchID:   fetchID,
		Rows:      len(rows),
		CreatedAt: s.opts.Now(),
	}
	details := fetchDetails{Websites: s.opts.Websites, DurationMS: elapsed.Milliseconds()}
	if err != nil {
		logger.Error("fetch failed", "error", err, "duration", elapsed)
		entry.ActivityType = activity.TypeFetchFailed
		entry.Summary = err.Error()
		details.Error = err.Error()
	} else {
		logger.Info("fetch succeeded", "rows", len(rows), "duration", elapsed)
		entry.ActivityType = activity.TypeFetchSucceeded
		entry.Summary = fmt.Sprintf("%d pending orders", len(rows))
	}
	s.record(ctx, logger, tenantID, entry, details)

	if err != nil {
		return nil, err
	}
	return rows, nil
}

type fetchDetails struct {
	Websites   []string `json:"websites"`
	DurationMS int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

func (s *Service) record(ctx context.Context, logger *slog.Logger, tenantID string, entry *activity.ActivityEntry, details fetchDetails) {
	if s.activity == nil {
		return
	}
	if raw, err := json.Marshal(details); err == nil {
		entry.Details = string(raw)
	}
	// The fetch result stands even if the log write fails.
	if err := s.activity.LogActivity(context.WithoutCancel(ctx), tenantID, entry); err != nil {
		logger.Warn("failed to record fetch activity", "error", err)
	}
}

func (s *Service) fetch(ctx context.Context, logger *slog.Logger) ([]SalesOrder, error) {
	sess, err := s.remote.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	websites, err := s.remote.Call(ctx, sess, odoo.SearchRead("website",
		odoo.Domain{odoo.Where("name", "in", s.opts.Websites)},
		websiteFields...))
	if err != nil {
		return nil, fmt.Errorf("reading websites: %w", err)
	}
	websiteIDs := make([]int64, 0, len(websites))
	for _, w := range websites {
		if id, ok := intField(w, "id"); ok {
			websiteIDs = append(websiteIDs, id)
		}
	}
	if len(websiteIDs) == 0 {
		return nil, ErrNoWebsites
	}
	logger.Debug("websites resolved", "count", len(websiteIDs))

	orders, err := s.remote.Call(ctx, sess, odoo.SearchRead("sale.order",
		odoo.Domain{
			odoo.Where("website_id", "in", websiteIDs),
			odoo.Where("state", "in", confirmedStates),
		},
		orderFields...))
	if err != nil {
		return nil, fmt.Errorf("reading sale orders: %w", err)
	}
	if len(orders) == 0 {
		return []SalesOrder{}, nil
	}

	partnerIDs := make([]int64, 0, len(orders))
	seen := make(map[int64]bool, len(orders))
	names := make([]string, 0, len(orders))
	for _, o := range orders {
		if id, _, ok := many2one(o, "partner_id"); ok && !seen[id] {
			seen[id] = true
			partnerIDs = append(partnerIDs, id)
		}
		if name := stringField(o, "name"); name != "" {
			names = append(names, name)
		}
	}

	var partners, pickings []odoo.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		partners, err = s.remote.Call(gctx, sess, odoo.SearchRead("res.partner",
			odoo.Domain{odoo.Where("id", "in", partnerIDs)},
			partnerFields...))
		if err != nil {
			return fmt.Errorf("reading partners: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pickings, err = s.remote.Call(gctx, sess, odoo.SearchRead("stock.picking",
			odoo.Domain{
				odoo.Where("origin", "in", names),
				odoo.Where("state", "not in", closedPickings),
			},
			pickingFields...))
		if err != nil {
			return fmt.Errorf("reading pickings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cities := make(map[int64]string, len(partners))
	for _, p := range partners {
		if id, ok := intField(p, "id"); ok {
			cities[id] = stringField(p, "city")
		}
	}
	pending := make(map[string]bool, len(pickings))
	for _, p := range pickings {
		if origin := stringField(p, "origin"); origin != "" {
			pending[origin] = true
		}
	}

	rows := make([]SalesOrder, 0, len(pending))
	for _, o := range orders {
		if !pending[stringField(o, "name")] {
			continue
		}
		rows = append(rows, project(o, cities, s.opts.LocalCity))
	}
	return rows, nil
}

// Dashboard fetches pending orders and returns the decorated, filtered page
// selected by q. The summary counts cover every pending order.
func (s *Service) Dashboard(ctx context.Context, tenantID string, q Query) (*Dashboard, error) {
	if q.Status != "" {
		status, ok := workclock.ParseStatus(string(q.Status))
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, q.Status)
		}
		q.Status = status
	}
	orders, err := s.FetchPending(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rows := Filter(Decorate(orders, s.opts.Now()), q.Status, q.Website)
	return &Dashboard{
		Page:     Paginate(rows, q.Page, s.opts.PerPage),
		Summary:  Summarize(orders),
		Websites: s.Websites(),
	}, nil
}
