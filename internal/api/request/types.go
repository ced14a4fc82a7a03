package request

import "encoding/json"

// AuthLoginRequest is the request body for a local operator login
type AuthLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RedeemKeyRequest is the request body for redeeming an access key
type RedeemKeyRequest struct {
	Code string `json:"code"`
}

// CreateKeyRequest is the request body for issuing an access key
type CreateKeyRequest struct {
	Tier string `json:"tier"`
}

// GameLoginRequest is the request body for a proxied game-account sign-in
type GameLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountRequest is the request body for fetching game-account data
type AccountRequest struct {
	AuthToken string `json:"auth_token"`
}

// ChangeLocalIDRequest is the request body for a local-ID change. A valid
// auth token, or email/password for the login fallback, must be supplied.
type ChangeLocalIDRequest struct {
	AuthToken  string `json:"auth_token,omitempty"`
	Email      string `json:"email,omitempty"`
	Password   string `json:"password,omitempty"`
	NewLocalID string `json:"new_local_id"`

	// Optional stat overrides
	Name  string      `json:"name,omitempty"`
	Money json.Number `json:"money,omitempty"`
}

// CloneAccountRequest is the request body for cloning an account
type CloneAccountRequest struct {
	SourceAuth     string `json:"source_auth"`
	TargetEmail    string `json:"target_email"`
	TargetPassword string `json:"target_password"`
	CustomLocalID  string `json:"custom_local_id,omitempty"`
}
