package repository

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupAlertRepo(t *testing.T) AlertRepository {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewAlertRepository(client)
}

func TestAlertRepositoryReplaceAll(t *testing.T) {
	repo := setupAlertRepo(t)
	ctx := context.Background()

	first := []StudentAlert{
		{StudentID: "STU001", StudentName: "Asha", RiskLevel: "Safe", Message: "ok", UpdatedAt: time.Now().UTC()},
		{StudentID: "STU002", StudentName: "Bilal", RiskLevel: "High Risk", Message: "alert", CounselorAssigned: true, UpdatedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.ReplaceAll(ctx, first, time.Hour))

	alert, ok, err := repo.GetByStudentID(ctx, "STU002")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, alert.CounselorAssigned)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	updated, err := repo.LastUpdated(ctx)
	require.NoError(t, err)
	require.NotNil(t, updated)

	// A replace drops alerts for students no longer present.
	second := []StudentAlert{
		{StudentID: "STU001", StudentName: "Asha", RiskLevel: "Safe", Message: "ok", UpdatedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.ReplaceAll(ctx, second, time.Hour))

	_, ok, err = repo.GetByStudentID(ctx, "STU002")
	require.NoError(t, err)
	require.False(t, ok)

	all, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestAlertRepositoryMissingStudent(t *testing.T) {
	repo := setupAlertRepo(t)

	_, ok, err := repo.GetByStudentID(context.Background(), "STU999")
	require.NoError(t, err)
	require.False(t, ok)

	updated, err := repo.LastUpdated(context.Background())
	require.NoError(t, err)
	require.Nil(t, updated)
}
