package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sigco3111/rpg-script-editor/pkg/player"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

const (
	// projectKey holds the single working project document.
	projectKey = "project:current"

	playSessionPrefix = "play:"

	// PlaySessionTTL bounds abandoned sessions.
	PlaySessionTTL = 24 * time.Hour
)

// RedisService implements the Storage interface using Redis
type RedisService struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisService)(nil)

// NewRedisService creates a new Redis service instance
func NewRedisService(redisURL string, logger *slog.Logger) *RedisService {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisService{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisService) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	r.logger.Debug("Redis ping successful", "result", cmd.Val())
	return nil
}

func (r *RedisService) SaveProject(ctx context.Context, project *script.Project) error {
	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	if err := r.client.Set(ctx, projectKey, data, 0).Err(); err != nil {
		r.logger.Error("Redis SET failed", "key", projectKey, "error", err)
		return fmt.Errorf("failed to save project: %w", err)
	}

	r.logger.Debug("Project saved", "bytes", len(data))
	return nil
}

func (r *RedisService) LoadProject(ctx context.Context) (*script.Project, error) {
	data, err := r.client.Get(ctx, projectKey).Result()
	if err != nil {
		if err == redis.Nil {
			r.logger.Debug("No project stored", "key", projectKey)
			return nil, nil
		}
		r.logger.Error("Redis GET failed", "key", projectKey, "error", err)
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	var project script.Project
	if err := json.Unmarshal([]byte(data), &project); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	return &project, nil
}

func (r *RedisService) DeleteProject(ctx context.Context) error {
	if err := r.client.Del(ctx, projectKey).Err(); err != nil {
		r.logger.Error("Redis DEL failed", "key", projectKey, "error", err)
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (r *RedisService) SavePlaySession(ctx context.Context, session *player.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal play session: %w", err)
	}

	key := playSessionPrefix + session.ID.String()
	if err := r.client.Set(ctx, key, data, PlaySessionTTL).Err(); err != nil {
		r.logger.Error("Redis SET failed", "key", key, "error", err)
		return fmt.Errorf("failed to save play session: %w", err)
	}

	r.logger.Debug("Play session saved", "key", key)
	return nil
}

func (r *RedisService) LoadPlaySession(ctx context.Context, id string) (*player.Session, error) {
	key := playSessionPrefix + id
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			r.logger.Debug("Play session not found", "key", key)
			return nil, nil
		}
		r.logger.Error("Redis GET failed", "key", key, "error", err)
		return nil, fmt.Errorf("failed to load play session: %w", err)
	}

	var session player.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal play session: %w", err)
	}
	return &session, nil
}

func (r *RedisService) DeletePlaySession(ctx context.Context, id string) error {
	key := playSessionPrefix + id
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Redis DEL failed", "key", key, "error", err)
		return fmt.Errorf("failed to delete play session: %w", err)
	}
	return nil
}

func (r *RedisService) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}

	r.logger.Info("Redis connection closed")
	return nil
}
