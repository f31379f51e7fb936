// Package session keeps client state server-side so browsers hold
// nothing but a session id: auth sessions and transient authoring
// drafts, both in redis with TTLs so nothing outlives its use.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/byway-labs/byway-gateway/internal/models"
)

// ErrNotFound means no session (or draft) exists under the given key.
var ErrNotFound = errors.New("session not found")

// Store keeps sessions and drafts in redis.
type Store struct {
	client     *redis.Client
	sessionTTL time.Duration
	draftTTL   time.Duration
}

// NewStore connects to redis and verifies the connection.
func NewStore(address, password string, db int, sessionTTL, draftTTL time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if draftTTL <= 0 {
		draftTTL = 2 * time.Hour
	}

	return &Store{
		client:     client,
		sessionTTL: sessionTTL,
		draftTTL:   draftTTL,
	}, nil
}

func sessionKey(id string) string { return "session:" + id }
func draftKey(id string) string   { return "draft:" + id }

// Create issues a new session wrapping an upstream token.
func (s *Store) Create(ctx context.Context, token string, user models.User) (models.Session, error) {
	sess := models.Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(sess.ID), data, s.sessionTTL).Err(); err != nil {
		return models.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	slog.Info("session created", "session_id", sess.ID, "user", user.Name)
	return sess, nil
}

// Get loads a session by id.
func (s *Store) Get(ctx context.Context, id string) (models.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return models.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return sess, nil
}

// Delete drops a session and any draft attached to it. Used for
// explicit logout and for the forced logout on an upstream 401.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id), draftKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	slog.Info("session deleted", "session_id", id)
	return nil
}

// SaveDraft stores a transient draft under the session, replacing any
// previous one. The draft survives navigation, not the session.
func (s *Store) SaveDraft(ctx context.Context, sessionID string, draft any) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(sessionID), data, s.draftTTL).Err(); err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	return nil
}

// LoadDraft decodes the session's draft into out.
func (s *Store) LoadDraft(ctx context.Context, sessionID string, out any) error {
	data, err := s.client.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return nil
}

// ClearDraft removes the session's draft, if any.
func (s *Store) ClearDraft(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// HealthCheck verifies redis connectivity.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
