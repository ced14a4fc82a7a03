// Package auth implements the tool's local access control: operator users
// (admins) and redeemable access keys whose tier gates which account
// mutations a session may run. This is bookkeeping for the tool itself and
// has nothing to do with the game's own identity service.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jbcacc/cpm-backend/internal/dependencies/clock"
	"github.com/jbcacc/cpm-backend/internal/dependencies/random"
	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// KeyCodeLength is the length of generated access key codes
const KeyCodeLength = 16

// Session is an authenticated session for this tool. User sessions carry
// the full tier; key sessions carry the tier of the redeemed key.
type Session struct {
	Token     string
	Tier      model.KeyTier
	UserID    string
	Username  string
	IsAdmin   bool
	KeyCode   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	// UserSessionDuration applies to user logins and full-tier keys
	UserSessionDuration time.Duration

	// HourKeySessionDuration applies to hour-tier key sessions
	HourKeySessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		UserSessionDuration:    24 * time.Hour,
		HourKeySessionDuration: time.Hour,
	}
}

// Service handles local authentication, key redemption and sessions
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random

	mu       sync.RWMutex
	sessions map[string]*Session

	cfg Config
}

// New creates a new auth service
func New(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config) *Service {
	if cfg.UserSessionDuration == 0 {
		cfg.UserSessionDuration = DefaultConfig().UserSessionDuration
	}
	if cfg.HourKeySessionDuration == 0 {
		cfg.HourKeySessionDuration = DefaultConfig().HourKeySessionDuration
	}
	return &Service{
		storage:  store,
		clock:    clk,
		random:   rnd,
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

// CreateUser creates an operator user. Used at bootstrap and by admins.
func (s *Service) CreateUser(ctx context.Context, username, password string, isAdmin bool) (*model.User, error) {
	_, err := s.storage.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, model.ErrUsernameExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           s.generateToken("u_"),
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates an operator user and opens a full-tier session
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.clock.Now()
	session := &Session{
		Token:     s.generateToken("sess_"),
		Tier:      model.TierFull,
		UserID:    user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.UserSessionDuration),
	}
	s.putSession(session)
	return session, nil
}

// CreateKey issues a new access key of the given tier
func (s *Service) CreateKey(ctx context.Context, tier model.KeyTier, createdBy string) (*model.AccessKey, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("unknown key tier %q", tier)
	}

	key := &model.AccessKey{
		Code:      s.random.String(KeyCodeLength, random.LocalIDAlphabet),
		Tier:      tier,
		CreatedBy: createdBy,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.SaveAccessKey(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// RedeemKey consumes an unredeemed access key and opens a session carrying
// the key's tier. A key can be redeemed once.
func (s *Service) RedeemKey(ctx context.Context, code string) (*Session, error) {
	key, err := s.storage.GetAccessKey(ctx, code)
	if err != nil {
		return nil, err
	}
	if key.Redeemed {
		return nil, model.ErrKeyAlreadyUsed
	}

	now := s.clock.Now()
	key.Redeemed = true
	key.RedeemedAt = now
	if err := s.storage.SaveAccessKey(ctx, key); err != nil {
		return nil, err
	}

	duration := s.cfg.UserSessionDuration
	if key.Tier == model.TierHour {
		duration = s.cfg.HourKeySessionDuration
	}

	session := &Session{
		Token:     s.generateToken("sess_"),
		Tier:      key.Tier,
		KeyCode:   key.Code,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}
	s.putSession(session)
	return session, nil
}

// ListKeys returns all issued access keys
func (s *Service) ListKeys(ctx context.Context) ([]*model.AccessKey, error) {
	return s.storage.ListAccessKeys(ctx)
}

// DeleteKey revokes an access key
func (s *Service) DeleteKey(ctx context.Context, code string) error {
	return s.storage.DeleteAccessKey(ctx, code)
}

// ValidateSession checks a session token and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Service) putSession(session *Session) {
	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()
}

// generateToken creates an opaque token with the given prefix
func (s *Service) generateToken(prefix string) string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable; fall back to the injected
		// random source rather than handing out a predictable constant
		return prefix + s.random.String(32, random.LocalIDAlphabet)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(buf)
}
