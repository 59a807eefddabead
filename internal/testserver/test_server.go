// Package testserver runs the full HTTP stack in-process against a fake ERP.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ganot/shipdash/internal/domain/activity"
	"github.com/ganot/shipdash/internal/domain/order"
	"github.com/ganot/shipdash/internal/mcp"
	"github.com/ganot/shipdash/internal/odoo"
	"github.com/ganot/shipdash/internal/odoo/odootest"
	"github.com/ganot/shipdash/internal/sqlite"
	"github.com/ganot/shipdash/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	ERP      *odootest.Server
	DB       *sqlite.DB
	Keys     *sqlite.APIKeyRepository
	Token    string
	TenantID string
}

// New starts the stack with authentication on; token maps to tenantID.
// The ERP fake is seeded with odootest.SeedShop and the clock is pinned to
// odootest.ShopNow.
func New(t *testing.T, token, tenantID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	erp := odootest.New(t)
	erp.SeedShop()

	client, err := odoo.NewClient(odoo.Settings{
		URL:      erp.URL,
		Database: erp.Database,
		Username: erp.Username,
		Password: erp.Password,
	}, odoo.WithSleep(func(context.Context, time.Duration) error { return nil }))
	require.NoError(t, err)

	now := func() time.Time { return odootest.ShopNow }

	activityRepo := sqlite.NewActivityRepository(db)
	keyRepo := sqlite.NewAPIKeyRepository(db)

	activitySvc := activity.NewService(activityRepo, nil)
	orderSvc := order.NewService(client, activitySvc, order.Options{Now: now}, nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Orders:   orderSvc,
			Activity: activitySvc,
		},
		Resolver:      keyRepo,
		AuthEnabled:   true,
		TransportMode: "http",
		Now:           now,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)

	server := httptest.NewServer(transport.NewServer(transport.Options{
		Orders:   orderSvc,
		Activity: activitySvc,
		MCP:      mcpHandler,
		Auth:     transport.AuthMiddleware(keyRepo),
	}))

	ts := &TestServer{
		Server:   server,
		ERP:      erp,
		DB:       db,
		Keys:     keyRepo,
		Token:    token,
		TenantID: tenantID,
	}

	require.NoError(t, ts.AddAPIKey(token, tenantID))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

func (ts *TestServer) AddAPIKey(token, tenantID string) error {
	return ts.Keys.Add(context.Background(), token, tenantID, "test")
}
