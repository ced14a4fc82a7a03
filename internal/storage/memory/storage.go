package memory

import (
	"context"
	"sync"

	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[string]*model.User
	usernameIndex map[string]string
	keys          map[string]*model.AccessKey
	operations    []*model.OperationLogEntry
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[string]*model.User),
		usernameIndex: make(map[string]string),
		keys:          make(map[string]*model.AccessKey),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// Access key operations

func (s *Storage) SaveAccessKey(ctx context.Context, key *model.AccessKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.Code] = key
	return nil
}

func (s *Storage) GetAccessKey(ctx context.Context, code string) (*model.AccessKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[code]
	if !ok {
		return nil, model.ErrKeyNotFound
	}
	return key, nil
}

func (s *Storage) DeleteAccessKey(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, code)
	return nil
}

func (s *Storage) ListAccessKeys(ctx context.Context) ([]*model.AccessKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]*model.AccessKey, 0, len(s.keys))
	for _, key := range s.keys {
		keys = append(keys, key)
	}
	return keys, nil
}

// Operation log operations

func (s *Storage) SaveOperationLog(ctx context.Context, entry *model.OperationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operations = append(s.operations, entry)
	return nil
}

func (s *Storage) ListOperationLogs(ctx context.Context, limit int) ([]*model.OperationLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first
	out := make([]*model.OperationLogEntry, 0, len(s.operations))
	for i := len(s.operations) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, s.operations[i])
	}
	return out, nil
}
