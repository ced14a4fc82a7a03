package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jbcacc/cpm-backend/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{
		ID:           "u_1",
		Username:     "operator",
		PasswordHash: "$2a$10$hash",
		IsAdmin:      true,
		CreatedAt:    time.Now(),
	}

	err := s.storage.SaveUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal("operator", retrieved.Username)
	s.True(retrieved.IsAdmin)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "u_missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestGetUserByUsername() {
	user := &model.User{ID: "u_1", Username: "operator"}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	retrieved, err := s.storage.GetUserByUsername(s.ctx, "operator")
	s.Require().NoError(err)
	s.Equal("u_1", retrieved.ID)

	_, err = s.storage.GetUserByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Access key tests

func (s *StorageSuite) TestSaveAndGetAccessKey() {
	key := &model.AccessKey{
		Code:      "HOURKEY234567890",
		Tier:      model.TierHour,
		CreatedBy: "operator",
		CreatedAt: time.Now(),
	}

	s.Require().NoError(s.storage.SaveAccessKey(s.ctx, key))

	retrieved, err := s.storage.GetAccessKey(s.ctx, "HOURKEY234567890")
	s.Require().NoError(err)
	s.Equal(model.TierHour, retrieved.Tier)
	s.False(retrieved.Redeemed)
}

func (s *StorageSuite) TestGetAccessKeyNotFound() {
	_, err := s.storage.GetAccessKey(s.ctx, "NOSUCHKEY")
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *StorageSuite) TestSaveAccessKeyOverwrites() {
	key := &model.AccessKey{Code: "KEY1", Tier: model.TierHour}
	s.Require().NoError(s.storage.SaveAccessKey(s.ctx, key))

	key.Redeemed = true
	key.RedeemedAt = time.Now()
	s.Require().NoError(s.storage.SaveAccessKey(s.ctx, key))

	retrieved, err := s.storage.GetAccessKey(s.ctx, "KEY1")
	s.Require().NoError(err)
	s.True(retrieved.Redeemed)
}

func (s *StorageSuite) TestDeleteAccessKey() {
	key := &model.AccessKey{Code: "KEY1", Tier: model.TierHour}
	s.Require().NoError(s.storage.SaveAccessKey(s.ctx, key))

	s.Require().NoError(s.storage.DeleteAccessKey(s.ctx, "KEY1"))

	_, err := s.storage.GetAccessKey(s.ctx, "KEY1")
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *StorageSuite) TestListAccessKeys() {
	s.Require().NoError(s.storage.SaveAccessKey(s.ctx, &model.AccessKey{Code: "KEY1", Tier: model.TierHour}))
	s.Require().NoError(s.storage.SaveAccessKey(s.ctx, &model.AccessKey{Code: "KEY2", Tier: model.TierFull}))

	keys, err := s.storage.ListAccessKeys(s.ctx)
	s.Require().NoError(err)
	s.Len(keys, 2)
}

// Operation log tests

func (s *StorageSuite) TestOperationLogNewestFirst() {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"op_1", "op_2", "op_3"} {
		entry := &model.OperationLogEntry{
			ID:        id,
			Kind:      "change_localid",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		s.Require().NoError(s.storage.SaveOperationLog(s.ctx, entry))
	}

	entries, err := s.storage.ListOperationLogs(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("op_3", entries[0].ID)
	s.Equal("op_1", entries[2].ID)
}

func (s *StorageSuite) TestOperationLogLimit() {
	for _, id := range []string{"op_1", "op_2", "op_3"} {
		s.Require().NoError(s.storage.SaveOperationLog(s.ctx, &model.OperationLogEntry{ID: id}))
	}

	entries, err := s.storage.ListOperationLogs(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("op_3", entries[0].ID)
	s.Equal("op_2", entries[1].ID)
}

func (s *StorageSuite) TestOperationLogEmpty() {
	entries, err := s.storage.ListOperationLogs(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}
