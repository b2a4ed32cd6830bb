package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigco3111/rpg-script-editor/pkg/player"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

func testRedisService(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	svc := NewRedisService(mr.Addr(), logger)
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Errorf("Failed to close Redis service: %v", err)
		}
	})
	return svc, mr
}

func TestRedisService_Ping(t *testing.T) {
	svc, _ := testRedisService(t)
	require.NoError(t, svc.Ping(context.Background()))
}

func TestRedisService_ProjectRoundTrip(t *testing.T) {
	svc, _ := testRedisService(t)
	ctx := context.Background()

	// Nothing stored yet
	loaded, err := svc.LoadProject(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	project := script.NewProject()
	project.WorldSettings.Title = "Aeloria"
	project.Stages = []script.Stage{
		{
			ID:    "s1",
			Title: "Stage One",
			Scenes: []script.Scene{
				{ID: "sc1", StageID: "s1", Type: script.SceneNarration, Title: "Opening"},
			},
		},
	}

	require.NoError(t, svc.SaveProject(ctx, project))

	loaded, err = svc.LoadProject(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Aeloria", loaded.WorldSettings.Title)
	require.Len(t, loaded.Stages, 1)
	assert.Equal(t, "Stage One", loaded.Stages[0].Title)

	require.NoError(t, svc.DeleteProject(ctx))
	loaded, err = svc.LoadProject(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisService_PlaySessionRoundTrip(t *testing.T) {
	svc, mr := testRedisService(t)
	ctx := context.Background()

	session := player.NewSession(player.Snapshot{
		StageID: "s1",
		SceneID: "sc1",
	})

	require.NoError(t, svc.SavePlaySession(ctx, session))

	// Sessions expire
	key := "play:" + session.ID.String()
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	loaded, err := svc.LoadPlaySession(ctx, session.ID.String())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, "sc1", loaded.Snapshot.SceneID)

	require.NoError(t, svc.DeletePlaySession(ctx, session.ID.String()))
	loaded, err = svc.LoadPlaySession(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisService_LoadPlaySession_Missing(t *testing.T) {
	svc, _ := testRedisService(t)

	loaded, err := svc.LoadPlaySession(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
