package response

import (
	"encoding/json"
	"time"

	"github.com/jbcacc/cpm-backend/internal/gamebackend"
	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/services/auth"
	"github.com/jbcacc/cpm-backend/internal/services/rewrite"
)

// Session represents a local tool session in API responses
type Session struct {
	Token     string    `json:"token"`
	Tier      string    `json:"tier"`
	IsAdmin   bool      `json:"is_admin"`
	Username  string    `json:"username,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionFromModel converts an auth.Session
func SessionFromModel(s *auth.Session) Session {
	return Session{
		Token:     s.Token,
		Tier:      string(s.Tier),
		IsAdmin:   s.IsAdmin,
		Username:  s.Username,
		ExpiresAt: s.ExpiresAt,
	}
}

// AccessKey represents an issued access key
type AccessKey struct {
	Code      string    `json:"code"`
	Tier      string    `json:"tier"`
	Redeemed  bool      `json:"redeemed"`
	CreatedAt time.Time `json:"created_at"`
}

// AccessKeyFromModel converts a model.AccessKey
func AccessKeyFromModel(k *model.AccessKey) AccessKey {
	return AccessKey{
		Code:      k.Code,
		Tier:      string(k.Tier),
		Redeemed:  k.Redeemed,
		CreatedAt: k.CreatedAt,
	}
}

// GameLogin is the response for a proxied game-account sign-in
type GameLogin struct {
	AuthToken    string `json:"auth_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	AccountID    string `json:"account_id"`
	Email        string `json:"email"`
}

// GameLoginFromCredential converts a gamebackend.Credential
func GameLoginFromCredential(c *gamebackend.Credential) GameLogin {
	return GameLogin{
		AuthToken:    c.IDToken,
		RefreshToken: c.RefreshToken,
		AccountID:    c.AccountID,
		Email:        c.Email,
	}
}

// Account is a summary of a fetched game account
type Account struct {
	LocalID      string      `json:"local_id"`
	CleanLocalID string      `json:"clean_local_id"`
	Name         string      `json:"name"`
	Money        json.Number `json:"money"`
}

// AccountFromRecord converts a model.PlayerRecord
func AccountFromRecord(r *model.PlayerRecord) Account {
	money := r.Money
	if money == "" {
		money = "0"
	}
	return Account{
		LocalID:      r.LocalID,
		CleanLocalID: rewrite.CleanID(r.LocalID),
		Name:         r.Name,
		Money:        money,
	}
}

// Cars summarizes a fetched vehicle list
type Cars struct {
	Total  int      `json:"total"`
	CarIDs []string `json:"car_ids"`
}

// CarsFromRecords converts a vehicle list
func CarsFromRecords(cars []model.VehicleRecord) Cars {
	ids := make([]string, len(cars))
	for i, car := range cars {
		ids[i] = car.CarID
	}
	return Cars{
		Total:  len(cars),
		CarIDs: ids,
	}
}
