package order_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ganot/shipdash/internal/domain/activity"
	"github.com/ganot/shipdash/internal/domain/order"
	"github.com/ganot/shipdash/internal/domain/workclock"
	"github.com/ganot/shipdash/internal/odoo"
	"github.com/ganot/shipdash/internal/odoo/odootest"
	"github.com/ganot/shipdash/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newShop(t *testing.T) (*odootest.Server, *odoo.Client) {
	t.Helper()
	srv := odootest.New(t)
	srv.SeedShop()
	client, err := odoo.NewClient(odoo.Settings{
		URL:      srv.URL,
		Database: srv.Database,
		Username: srv.Username,
		Password: srv.Password,
	}, odoo.WithSleep(func(context.Context, time.Duration) error { return nil }))
	require.NoError(t, err)
	return srv, client
}

func fixedNow() time.Time { return odootest.ShopNow }

func TestFetchPending_ProjectsPendingOrders(t *testing.T) {
	ctx := context.Background()
	srv, client := newShop(t)

	logger := &mocks.ActivityLogger{}
	var logged *activity.ActivityEntry
	logger.On("LogActivity", mock.Anything, "tenant1", mock.AnythingOfType("*activity.ActivityEntry")).
		Run(func(args mock.Arguments) { logged = args.Get(2).(*activity.ActivityEntry) }).
		Return(nil)

	svc := order.NewService(client, logger, order.Options{Now: fixedNow}, nil)
	rows, err := svc.FetchPending(ctx, "tenant1")
	require.NoError(t, err)

	require.Equal(t, []order.SalesOrder{
		{
			ID:           "S00041",
			IDLink:       41,
			PartnerName:  "Ana López",
			Subtotal:     100,
			Total:        116,
			DateOrder:    "15/10/2024, 09:00:00 a.m.",
			WebsiteName:  "Pure Form",
			DeliveryType: order.DeliveryLocal,
			City:         "Tijuana",
		},
		{
			ID:           "S00042",
			IDLink:       42,
			PartnerName:  "Luis Pérez",
			Subtotal:     250.5,
			Total:        290.58,
			DateOrder:    "14/10/2024, 08:30:00 a.m.",
			WebsiteName:  "APX Energy",
			DeliveryType: order.DeliveryExterior,
			City:         "Monterrey",
		},
		{
			ID:           "S00043",
			IDLink:       43,
			PartnerName:  "Sin Ciudad",
			Subtotal:     80,
			Total:        92.8,
			DateOrder:    "15/10/2024, 01:00:00 p.m.",
			WebsiteName:  "Limit-X Nutrition",
			DeliveryType: order.DeliveryExterior,
			City:         order.UnknownCity,
		},
	}, rows)

	require.Equal(t, 1, srv.Logins())
	models := map[string]bool{}
	for _, c := range srv.Calls() {
		models[c.Model] = true
		require.Equal(t, "search_read", c.Method)
		require.Equal(t, "sess-1", c.SessionID)
	}
	require.Equal(t, map[string]bool{"website": true, "sale.order": true, "res.partner": true, "stock.picking": true}, models)

	require.NotNil(t, logged)
	require.Equal(t, activity.TypeFetchSucceeded, logged.ActivityType)
	require.Equal(t, 3, logged.Rows)
	require.NotEmpty(t, logged.FetchID)

	var details map[string]any
	require.NoError(t, json.Unmarshal([]byte(logged.Details), &details))
	require.Len(t, details["websites"], 3)
}

func TestFetchPending_NoWebsites(t *testing.T) {
	ctx := context.Background()
	srv, client := newShop(t)

	logger := &mocks.ActivityLogger{}
	logger.On("LogActivity", mock.Anything, "tenant1", mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeFetchFailed && e.Summary == order.ErrNoWebsites.Error()
	})).Return(nil)

	svc := order.NewService(client, logger, order.Options{Websites: []string{"Closed Store"}}, nil)
	_, err := svc.FetchPending(ctx, "tenant1")
	require.ErrorIs(t, err, order.ErrNoWebsites)
	require.Len(t, srv.Calls(), 1)
	logger.AssertExpectations(t)
}

func TestFetchPending_NoOrdersIsEmpty(t *testing.T) {
	ctx := context.Background()
	srv, client := newShop(t)
	srv.SetRecords("sale.order", nil)

	svc := order.NewService(client, nil, order.Options{}, nil)
	rows, err := svc.FetchPending(ctx, "tenant1")
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
	require.Len(t, srv.Calls(), 2)
}

func TestFetchPending_RecoversFromExpiredSession(t *testing.T) {
	ctx := context.Background()
	srv, client := newShop(t)
	srv.QueueFaults(odootest.FaultRateLimit, odootest.FaultSessionExpired)

	svc := order.NewService(client, nil, order.Options{}, nil)
	rows, err := svc.FetchPending(ctx, "tenant1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, 2, srv.Logins())
}

func TestFetchPending_AuthenticationFailure(t *testing.T) {
	ctx := context.Background()
	srv, client := newShop(t)
	srv.SetLoginDown(true)

	logger := &mocks.ActivityLogger{}
	logger.On("LogActivity", mock.Anything, "tenant1", mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeFetchFailed
	})).Return(nil)

	svc := order.NewService(client, logger, order.Options{}, nil)
	_, err := svc.FetchPending(ctx, "tenant1")
	require.ErrorIs(t, err, odoo.ErrAuthentication)
	require.Empty(t, srv.Calls())
	logger.AssertExpectations(t)
}

func TestFetchPending_RemoteFailureIsWrapped(t *testing.T) {
	ctx := context.Background()
	sess := odoo.NewSession("sess-x")

	remote := &mocks.Remote{}
	remote.On("Authenticate", ctx).Return(sess, nil)
	remote.On("Call", ctx, sess, mock.MatchedBy(func(r odoo.Request) bool { return r.Model == "website" })).
		Return([]odoo.Record{{"id": float64(1), "name": "Pure Form"}}, nil)
	remote.On("Call", ctx, sess, mock.MatchedBy(func(r odoo.Request) bool { return r.Model == "sale.order" })).
		Return(nil, &odoo.RemoteCallError{Model: "sale.order", Method: "search_read", Message: "boom", Err: odoo.ErrApplication})

	svc := order.NewService(remote, nil, order.Options{}, nil)
	_, err := svc.FetchPending(ctx, "tenant1")
	require.ErrorIs(t, err, odoo.ErrApplication)
	require.Contains(t, err.Error(), "reading sale orders")
	remote.AssertExpectations(t)
}

func TestFetchPending_ActivityFailureDoesNotFailFetch(t *testing.T) {
	ctx := context.Background()
	_, client := newShop(t)

	logger := &mocks.ActivityLogger{}
	logger.On("LogActivity", mock.Anything, "tenant1", mock.Anything).Return(errors.New("database is locked"))

	svc := order.NewService(client, logger, order.Options{}, nil)
	rows, err := svc.FetchPending(ctx, "tenant1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestDashboard_FiltersAndCounts(t *testing.T) {
	ctx := context.Background()
	_, client := newShop(t)
	svc := order.NewService(client, nil, order.Options{Now: fixedNow}, nil)

	dash, err := svc.Dashboard(ctx, "tenant1", order.Query{})
	require.NoError(t, err)
	require.Equal(t, order.Summary{Pending: 3, Local: 1, Exterior: 2}, dash.Summary)
	require.Equal(t, 1, dash.TotalPages)
	require.Len(t, dash.Rows, 3)
	require.Equal(t, workclock.StatusModerate, dash.Rows[0].Status)
	require.Equal(t, workclock.StatusDelayed, dash.Rows[1].Status)
	require.Equal(t, workclock.StatusOnTime, dash.Rows[2].Status)
	require.Equal(t, []string{"Pure Form", "Limit-X Nutrition", "APX Energy"}, dash.Websites)

	dash, err = svc.Dashboard(ctx, "tenant1", order.Query{Status: "Retrasado"})
	require.NoError(t, err)
	require.Len(t, dash.Rows, 1)
	require.Equal(t, "S00042", dash.Rows[0].ID)
	require.Equal(t, 3, dash.Summary.Pending)

	dash, err = svc.Dashboard(ctx, "tenant1", order.Query{Website: "Pure Form"})
	require.NoError(t, err)
	require.Len(t, dash.Rows, 1)
	require.Equal(t, "S00041", dash.Rows[0].ID)

	dash, err = svc.Dashboard(ctx, "tenant1", order.Query{Page: 2})
	require.NoError(t, err)
	require.Empty(t, dash.Rows)
	require.Equal(t, 2, dash.Page.Page)
}

func TestDashboard_InvalidStatus(t *testing.T) {
	svc := order.NewService(&mocks.Remote{}, nil, order.Options{}, nil)
	_, err := svc.Dashboard(context.Background(), "tenant1", order.Query{Status: "late"})
	require.ErrorIs(t, err, order.ErrInvalidQuery)
}
