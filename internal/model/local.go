package model

import "time"

// KeyTier controls which operations a redeemed access key permits.
type KeyTier string

const (
	// TierHour permits local-ID changes only
	TierHour KeyTier = "hour"
	// TierFull permits local-ID changes and account cloning
	TierFull KeyTier = "full"
)

// Valid reports whether t is a known tier
func (t KeyTier) Valid() bool {
	return t == TierHour || t == TierFull
}

// AllowsClone reports whether the tier permits account cloning
func (t KeyTier) AllowsClone() bool {
	return t == TierFull
}

// User is a local operator account for this tool (not a game account).
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccessKey is a redeemable card key issued by an admin. Redeeming a key
// opens a session with the key's tier; hour keys expire an hour after
// redemption.
type AccessKey struct {
	Code       string    `json:"code"`
	Tier       KeyTier   `json:"tier"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	RedeemedAt time.Time `json:"redeemed_at,omitzero"`
	Redeemed   bool      `json:"redeemed"`
}

// OperationLogEntry records one change-ID or clone run for auditing.
type OperationLogEntry struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // "change_localid" or "clone_account"
	OldLocalID  string    `json:"old_local_id,omitempty"`
	NewLocalID  string    `json:"new_local_id"`
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	CarsUpdated int       `json:"cars_updated"`
	CarsFailed  int       `json:"cars_failed"`
	StartedAt   time.Time `json:"started_at"`
	Duration    int64     `json:"duration_ms"`
}
