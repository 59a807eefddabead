package mocks

import (
	"context"

	"github.com/ganot/shipdash/internal/domain/activity"
	"github.com/ganot/shipdash/internal/odoo"
	"github.com/ganot/shipdash/internal/repository"
	"github.com/stretchr/testify/mock"
)

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// APIKeyRepository is a mock for repository.APIKeyRepository.
type APIKeyRepository struct {
	mock.Mock
}

func (m *APIKeyRepository) Create(ctx context.Context, tenantID, description string) (string, error) {
	args := m.Called(ctx, tenantID, description)
	return args.String(0), args.Error(1)
}

func (m *APIKeyRepository) Add(ctx context.Context, token, tenantID, description string) error {
	args := m.Called(ctx, token, tenantID, description)
	return args.Error(0)
}

func (m *APIKeyRepository) ResolveTenant(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *APIKeyRepository) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *APIKeyRepository) List(ctx context.Context, tenantID string) ([]repository.APIKey, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]repository.APIKey); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Remote is a mock for order.Remote.
type Remote struct {
	mock.Mock
}

func (m *Remote) Authenticate(ctx context.Context) (*odoo.Session, error) {
	args := m.Called(ctx)
	if sess, ok := args.Get(0).(*odoo.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Remote) Call(ctx context.Context, sess *odoo.Session, req odoo.Request) ([]odoo.Record, error) {
	args := m.Called(ctx, sess, req)
	if list, ok := args.Get(0).([]odoo.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityLogger is a mock for order.ActivityLogger.
type ActivityLogger struct {
	mock.Mock
}

func (m *ActivityLogger) LogActivity(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}
