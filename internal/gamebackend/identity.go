package gamebackend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"

	"github.com/jbcacc/cpm-backend/internal/model"
)

// Credential is the bearer token obtained from the identity service plus the
// basic profile returned alongside it. The token's lifetime is controlled by
// the remote service; it is never persisted here.
type Credential struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	AccountID    string `json:"localId"`
	Email        string `json:"email"`
}

// AccountInfo is the identity service's view of an account
type AccountInfo struct {
	AccountID string `json:"localId"`
	Email     string `json:"email"`
	Verified  bool   `json:"emailVerified"`
}

// Identity signs in against the remote identity service and looks up
// accounts by credential.
type Identity struct {
	relay  *Relay
	cfg    Config
	logger *slog.Logger
}

// NewIdentity creates an identity client
func NewIdentity(relay *Relay, cfg Config, logger *slog.Logger) *Identity {
	return &Identity{
		relay:  relay,
		cfg:    cfg,
		logger: logger,
	}
}

// identityError is the error envelope the identity service returns
type identityError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn exchanges email/password for a credential. Rejections carry the
// service's reason (EMAIL_NOT_FOUND, INVALID_PASSWORD, USER_DISABLED,
// TOO_MANY_ATTEMPTS_TRY_LATER) as an AuthError.
func (i *Identity) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	body := i.relay.Post(ctx, i.cfg.IdentityURL+"/verifyPassword", payload, nil, i.keyQuery())
	if body == nil {
		return nil, model.NewAuthError("identity service unreachable")
	}

	if reason := extractIdentityError(body); reason != "" {
		i.logger.Info("sign-in rejected", slog.String("reason", reason))
		return nil, model.NewAuthError(reason)
	}

	var cred Credential
	if err := json.Unmarshal(body, &cred); err != nil || cred.IDToken == "" {
		return nil, model.NewAuthError("malformed identity response")
	}

	return &cred, nil
}

// Lookup fetches the account profile for a credential. An error means the
// credential is invalid or expired.
func (i *Identity) Lookup(ctx context.Context, idToken string) (*AccountInfo, error) {
	payload := map[string]any{"idToken": idToken}

	body := i.relay.Post(ctx, i.cfg.IdentityURL+"/getAccountInfo", payload, nil, i.keyQuery())
	if body == nil {
		return nil, model.NewAuthError("identity service unreachable")
	}

	if reason := extractIdentityError(body); reason != "" {
		return nil, model.NewAuthError(reason)
	}

	var resp struct {
		Users []AccountInfo `json:"users"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Users) == 0 {
		return nil, model.NewAuthError("credential not recognized")
	}

	return &resp.Users[0], nil
}

func (i *Identity) keyQuery() url.Values {
	return url.Values{"key": []string{i.cfg.APIKey}}
}

// extractIdentityError returns the service's error reason, or "" on success
func extractIdentityError(body json.RawMessage) string {
	var envelope identityError
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}
