package storage

import (
	"context"

	"github.com/jbcacc/cpm-backend/internal/model"
)

// Storage defines the interface for the tool's local bookkeeping: operator
// users, redeemable access keys and the operation audit log. The core holds
// no durable game state; everything game-side lives in the remote backend.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Access key operations
	SaveAccessKey(ctx context.Context, key *model.AccessKey) error
	GetAccessKey(ctx context.Context, code string) (*model.AccessKey, error)
	DeleteAccessKey(ctx context.Context, code string) error
	ListAccessKeys(ctx context.Context) ([]*model.AccessKey, error)

	// Operation log operations
	SaveOperationLog(ctx context.Context, entry *model.OperationLogEntry) error
	ListOperationLogs(ctx context.Context, limit int) ([]*model.OperationLogEntry, error)
}
