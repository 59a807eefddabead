package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ganot/shipdash/internal/domain/activity"
	"github.com/ganot/shipdash/internal/domain/order"
	"github.com/ganot/shipdash/internal/domain/workclock"
	"github.com/ganot/shipdash/internal/odoo"
	"github.com/stretchr/testify/require"
)

type orderStub struct {
	rows      []order.SalesOrder
	err       error
	lastQuery order.Query
	tenantID  string
}

func (o *orderStub) FetchPending(_ context.Context, tenantID string) ([]order.SalesOrder, error) {
	o.tenantID = tenantID
	return o.rows, o.err
}

func (o *orderStub) Dashboard(_ context.Context, tenantID string, q order.Query) (*order.Dashboard, error) {
	o.tenantID = tenantID
	o.lastQuery = q
	if o.err != nil {
		return nil, o.err
	}
	return &order.Dashboard{Page: order.Paginate(nil, q.Page, 4)}, nil
}

type activityStub struct {
	entries  []activity.ActivityEntry
	err      error
	lastOpts activity.ListActivityOptions
}

func (a *activityStub) GetRecentActivity(_ context.Context, _ string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	a.lastOpts = opts
	return a.entries, a.err
}

func newTestServer(t *testing.T, orders *orderStub, acts *activityStub, auth func(http.Handler) http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewServer(Options{Orders: orders, Activity: acts, Auth: auth}))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url string, token string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestHTTPServer_Health(t *testing.T) {
	server := newTestServer(t, &orderStub{}, &activityStub{}, nil)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_Odoo(t *testing.T) {
	orders := &orderStub{rows: []order.SalesOrder{{
		ID:           "S00041",
		IDLink:       41,
		PartnerName:  "Ana López",
		Subtotal:     100,
		Total:        116,
		DateOrder:    "15/10/2024, 09:00:00 a.m.",
		WebsiteName:  "Pure Form",
		DeliveryType: order.DeliveryLocal,
		City:         "Tijuana",
	}}}
	server := newTestServer(t, orders, &activityStub{}, nil)

	resp, body := get(t, server.URL+"/api/odoo", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store, no-cache, must-revalidate, proxy-revalidate", resp.Header.Get("Cache-Control"))
	require.Equal(t, "no-cache", resp.Header.Get("Pragma"))
	require.Equal(t, "0", resp.Header.Get("Expires"))
	require.Equal(t, "no-store", resp.Header.Get("Surrogate-Control"))
	require.Equal(t, DefaultTenant, orders.tenantID)

	rows := body["salesOrders"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	require.Equal(t, "S00041", row["id"])
	require.Equal(t, float64(41), row["id_link"])
	require.Equal(t, "Envío local", row["delivery_type"])
	for _, key := range []string{"partner_name", "subtotal", "total", "date_order", "website_name", "city"} {
		require.Contains(t, row, key)
	}
}

func TestHTTPServer_OdooEmptyIsArray(t *testing.T) {
	server := newTestServer(t, &orderStub{rows: []order.SalesOrder{}}, &activityStub{}, nil)

	resp, body := get(t, server.URL+"/api/odoo", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []any{}, body["salesOrders"])
}

func TestHTTPServer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no websites", order.ErrNoWebsites, http.StatusNotFound},
		{"bad query", fmt.Errorf("%w: unknown status", order.ErrInvalidQuery), http.StatusBadRequest},
		{"login failed", &odoo.AuthenticationError{Reason: "status 503"}, http.StatusBadGateway},
		{"remote failed", fmt.Errorf("reading websites: %w", &odoo.RemoteCallError{Model: "website", Method: "search_read", Attempts: 4, Message: "rate limited", Err: odoo.ErrRateLimited}), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &orderStub{err: tt.err}, &activityStub{}, nil)
			resp, body := get(t, server.URL+"/api/odoo", "")
			require.Equal(t, tt.status, resp.StatusCode)
			require.NotEmpty(t, body["error"])
		})
	}

	server := newTestServer(t, &orderStub{err: order.ErrNoWebsites}, &activityStub{}, nil)
	_, body := get(t, server.URL+"/api/odoo", "")
	require.Equal(t, "No websites found.", body["error"])

	server = newTestServer(t, &orderStub{err: errors.New("secret detail")}, &activityStub{}, nil)
	_, body = get(t, server.URL+"/api/odoo", "")
	require.Equal(t, "internal error", body["error"])
}

func TestHTTPServer_Orders(t *testing.T) {
	orders := &orderStub{}
	server := newTestServer(t, orders, &activityStub{}, nil)

	resp, body := get(t, server.URL+"/api/orders?status=delayed&website=Pure%20Form&page=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, order.Query{Status: workclock.StatusDelayed, Website: "Pure Form", Page: 3}, orders.lastQuery)
	require.Equal(t, float64(3), body["page"])
	require.Equal(t, []any{}, body["rows"])

	resp, _ = get(t, server.URL+"/api/orders?page=two", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_Activity(t *testing.T) {
	acts := &activityStub{}
	server := newTestServer(t, &orderStub{}, acts, nil)

	resp, body := get(t, server.URL+"/api/activity?limit=5&type=fetch_failed", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 5, acts.lastOpts.Limit)
	require.Equal(t, activity.TypeFetchFailed, *acts.lastOpts.ActivityType)
	require.Equal(t, []any{}, body["entries"])

	resp, _ = get(t, server.URL+"/api/activity?limit=many", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	acts.err = activity.ErrInvalidInput
	resp, _ = get(t, server.URL+"/api/activity?type=bogus", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_Auth(t *testing.T) {
	orders := &orderStub{rows: []order.SalesOrder{}}
	resolver := &testResolver{tokenToTenant: map[string]string{"token": "tenant1"}}
	server := newTestServer(t, orders, &activityStub{}, AuthMiddleware(resolver))

	resp, _ := get(t, server.URL+"/api/odoo", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = get(t, server.URL+"/api/odoo", "wrong")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = get(t, server.URL+"/api/odoo", "token")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "tenant1", orders.tenantID)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
