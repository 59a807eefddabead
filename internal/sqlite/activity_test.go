package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/shipdash/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	base := time.Date(2024, 10, 15, 16, 0, 0, 0, time.UTC)
	entry1 := &activity.ActivityEntry{
		FetchID:      "f1",
		ActivityType: activity.TypeFetchSucceeded,
		Summary:      "2 pending orders",
		Rows:         2,
		Details:      `{"duration_ms":12}`,
		CreatedAt:    base,
	}
	entry2 := &activity.ActivityEntry{
		FetchID:      "f2",
		ActivityType: activity.TypeFetchFailed,
		Summary:      "odoo unreachable",
		CreatedAt:    base.Add(time.Minute),
	}

	require.NoError(t, repo.Log(ctx, "tenant1", entry1))
	require.NoError(t, repo.Log(ctx, "tenant1", entry2))
	require.NotZero(t, entry1.ID)
	require.Equal(t, "tenant1", entry1.TenantID)

	entries, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "f2", entries[0].FetchID)
	require.Equal(t, "f1", entries[1].FetchID)
	require.Equal(t, 2, entries[1].Rows)
	require.Equal(t, `{"duration_ms":12}`, entries[1].Details)
	require.True(t, base.Equal(entries[1].CreatedAt))
}

func TestActivityRepository_FiltersAndTenantIsolation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	base := time.Date(2024, 10, 15, 16, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		typ := activity.TypeFetchSucceeded
		if i%2 == 1 {
			typ = activity.TypeFetchFailed
		}
		require.NoError(t, repo.Log(ctx, "tenant1", &activity.ActivityEntry{
			FetchID:      string(rune('a' + i)),
			ActivityType: typ,
			Summary:      "fetch",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	failed := activity.TypeFetchFailed
	entries, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{ActivityType: &failed})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Equal(t, activity.TypeFetchFailed, e.ActivityType)
	}

	entries, err = repo.List(ctx, "tenant1", activity.ListActivityOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "d", entries[0].FetchID)
	require.Equal(t, "c", entries[1].FetchID)

	entries, err = repo.List(ctx, "tenant1", activity.ListActivityOptions{Offset: 4})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].FetchID)

	entries, err = repo.List(ctx, "tenant2", activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Empty(t, entries)
}
