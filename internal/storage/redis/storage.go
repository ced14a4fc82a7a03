package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.Set(ctx, usernameIndexKey(user.Username), user.ID, 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id string) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// Access key operations

func (s *Storage) SaveAccessKey(ctx context.Context, key *model.AccessKey) error {
	data, err := json.Marshal(key)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, accessKeyKey(key.Code), data, 0)
	pipe.SAdd(ctx, accessKeySetKey(), key.Code)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetAccessKey(ctx context.Context, code string) (*model.AccessKey, error) {
	data, err := s.client.Get(ctx, accessKeyKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrKeyNotFound
		}
		return nil, err
	}

	var key model.AccessKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

func (s *Storage) DeleteAccessKey(ctx context.Context, code string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, accessKeyKey(code))
	pipe.SRem(ctx, accessKeySetKey(), code)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListAccessKeys(ctx context.Context) ([]*model.AccessKey, error) {
	codes, err := s.client.SMembers(ctx, accessKeySetKey()).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]*model.AccessKey, 0, len(codes))
	for _, code := range codes {
		key, err := s.GetAccessKey(ctx, code)
		if err != nil {
			if errors.Is(err, model.ErrKeyNotFound) {
				// Index member without a value; skip
				continue
			}
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Operation log operations

func (s *Storage) SaveOperationLog(ctx context.Context, entry *model.OperationLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, operationLogKey(), data)
	if s.cfg.OperationLogMax > 0 {
		pipe.LTrim(ctx, operationLogKey(), 0, s.cfg.OperationLogMax-1)
	}
	if s.cfg.OperationLogTTL > 0 {
		pipe.Expire(ctx, operationLogKey(), s.cfg.OperationLogTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListOperationLogs(ctx context.Context, limit int) ([]*model.OperationLogEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	items, err := s.client.LRange(ctx, operationLogKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*model.OperationLogEntry, 0, len(items))
	for _, item := range items {
		var entry model.OperationLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
