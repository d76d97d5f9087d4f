// Package session persists the logged-in artist between requests. A session
// is identified by an opaque id (carried in a cookie by the web front end)
// and holds two values: the artist record as JSON and the backend auth token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
)

const (
	keyPrefix  = "mint:session:" // mint:session:{sid}:artist / mint:session:{sid}:token
	DefaultTTL = 30 * 24 * time.Hour
)

// Session is the explicit session context handed to every view.
type Session struct {
	ID     string
	Artist *domain.Artist
	Token  string
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Artist != nil && s.Artist.ID != ""
}

// ArtistID returns "" for anonymous sessions.
func (s *Session) ArtistID() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Artist.ID
}

// Service is the single read/write path to persisted session state.
type Service interface {
	Load(ctx context.Context, sid string) (*Session, error)
	Save(ctx context.Context, sid string, artist *domain.Artist, token string) (*Session, error)
	Clear(ctx context.Context, sid string) error
}

// NewID mints a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// RedisStore handles Redis operations for sessions
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Load returns the session for sid. Unknown or empty ids yield an anonymous
// session, never an error: a missing session just means "logged out".
func (s *RedisStore) Load(ctx context.Context, sid string) (*Session, error) {
	sess := &Session{ID: sid}
	if sid == "" {
		return sess, nil
	}

	vals, err := s.client.MGet(ctx, s.artistKey(sid), s.tokenKey(sid)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if raw, ok := vals[0].(string); ok && raw != "" {
		var artist domain.Artist
		if err := json.Unmarshal([]byte(raw), &artist); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session artist: %w", err)
		}
		sess.Artist = &artist
	}
	if tok, ok := vals[1].(string); ok {
		sess.Token = tok
	}
	return sess, nil
}

// Save stores artist and token under sid, replacing anything there.
func (s *RedisStore) Save(ctx context.Context, sid string, artist *domain.Artist, token string) (*Session, error) {
	if sid == "" {
		return nil, errors.New("session id required")
	}
	if artist == nil || artist.ID == "" {
		return nil, errors.New("artist with id required")
	}

	data, err := json.Marshal(artist)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session artist: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.artistKey(sid), data, s.ttl)
	if token != "" {
		pipe.Set(ctx, s.tokenKey(sid), token, s.ttl)
	} else {
		pipe.Del(ctx, s.tokenKey(sid))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &Session{ID: sid, Artist: artist, Token: token}, nil
}

// Clear removes both session keys. Clearing an unknown session is a no-op.
func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.artistKey(sid), s.tokenKey(sid)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) artistKey(sid string) string {
	return fmt.Sprintf("%s%s:artist", keyPrefix, sid)
}

func (s *RedisStore) tokenKey(sid string) string {
	return fmt.Sprintf("%s%s:token", keyPrefix, sid)
}
