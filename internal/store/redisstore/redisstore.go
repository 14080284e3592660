// Package redisstore keeps likes in Redis: a sorted set of track IDs per
// user scored by like time, plus one JSON value per like.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/llehouerou/aurora/internal/store"
)

var (
	_ store.Store         = (*Store)(nil)
	_ store.UserRegistrar = (*Store)(nil)
)

// Store is a store.Store backed by Redis.
type Store struct {
	client *redis.Client
}

// Options holds the connection settings.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Store{client: client}, nil
}

// New wraps an existing client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func likesKey(userID string) string {
	return "likes:" + userID
}

func likeKey(userID, trackID string) string {
	return "like:" + userID + ":" + trackID
}

func userKey(userID string) string {
	return "user:" + userID
}

func (s *Store) Upsert(ctx context.Context, like store.Like) error {
	if err := like.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(like)
	if err != nil {
		return fmt.Errorf("marshal like: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, likeKey(like.UserID, like.TrackID), data, 0)
		pipe.ZAdd(ctx, likesKey(like.UserID), redis.Z{
			Score:  float64(like.LikedAt.UnixMilli()),
			Member: like.TrackID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert like: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID, trackID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, likesKey(userID), trackID)
		pipe.Del(ctx, likeKey(userID, trackID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]store.Like, error) {
	ids, err := s.client.ZRevRange(ctx, likesKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = likeKey(userID, id)
	}
	raw, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	return decodeLikes(userID, ids, raw), nil
}

// decodeLikes pairs sorted-set members with their JSON values. Members whose
// value is missing or unreadable are kept with the ID only.
func decodeLikes(userID string, ids []string, raw []any) []store.Like {
	likes := make([]store.Like, 0, len(ids))
	for i, id := range ids {
		l := store.Like{UserID: userID, TrackID: id}
		if i < len(raw) {
			if str, ok := raw[i].(string); ok {
				var decoded store.Like
				if json.Unmarshal([]byte(str), &decoded) == nil {
					l = decoded
					l.UserID = userID
					l.TrackID = id
				}
			}
		}
		likes = append(likes, l)
	}
	return likes
}

func (s *Store) RegisterUser(ctx context.Context, u store.User) error {
	return s.client.HSet(ctx, userKey(u.ID),
		"username", u.Username,
		"avatar_url", u.AvatarURL,
		"last_seen", u.LastSeen.Unix(),
	).Err()
}
