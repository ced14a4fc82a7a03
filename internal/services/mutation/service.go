// Package mutation implements the bulk account mutations: changing an
// account's local ID everywhere it is embedded, and cloning an account's
// data and vehicles into another account. Both are linear state machines
// with early exit on the fatal steps (auth, account fetch, account save)
// and best-effort handling for everything vehicle-level.
package mutation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jbcacc/cpm-backend/internal/dependencies/clock"
	"github.com/jbcacc/cpm-backend/internal/dependencies/random"
	"github.com/jbcacc/cpm-backend/internal/gamebackend"
	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/services/rewrite"
	"github.com/jbcacc/cpm-backend/internal/services/sanitize"
	"github.com/jbcacc/cpm-backend/internal/storage"
)

// Backend is the slice of the game backend the orchestrator consumes
type Backend interface {
	FetchPlayerRecord(ctx context.Context, credential string) (*model.PlayerRecord, error)
	FetchVehicleList(ctx context.Context, credential string) ([]model.VehicleRecord, error)
	SavePlayerRecord(ctx context.Context, credential string, record json.RawMessage) error
	SaveVehicle(ctx context.Context, credential string, vehicle json.RawMessage) error
}

// IdentityProvider signs in against the remote identity service
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*gamebackend.Credential, error)
}

// Config holds orchestrator behavior settings
type Config struct {
	// VehicleSaveDelay paces the per-vehicle save loop so the remote
	// backend is not hammered
	VehicleSaveDelay time.Duration

	// CloneKeepExtra controls whether clone carries the source account's
	// opaque extra data into the target record
	CloneKeepExtra bool

	// NewIDLength is the length of generated destination local IDs
	NewIDLength int
}

// DefaultConfig returns default orchestrator configuration
func DefaultConfig() Config {
	return Config{
		VehicleSaveDelay: 150 * time.Millisecond,
		CloneKeepExtra:   true,
		NewIDLength:      12,
	}
}

// Service orchestrates account mutations. It holds no state between
// operations; every invocation fetches fresh copies of the records it
// touches.
type Service struct {
	backend  Backend
	identity IdentityProvider
	rewriter *rewrite.Service
	store    storage.Storage
	clock    clock.Clock
	random   random.Random
	cfg      Config
	logger   *slog.Logger
}

// New creates a mutation service
func New(backend Backend, identity IdentityProvider, rewriter *rewrite.Service, store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.NewIDLength == 0 {
		cfg.NewIDLength = DefaultConfig().NewIDLength
	}
	return &Service{
		backend:  backend,
		identity: identity,
		rewriter: rewriter,
		store:    store,
		clock:    clk,
		random:   rnd,
		cfg:      cfg,
		logger:   logger,
	}
}

// ChangeIdentifierParams carries the inputs for a local-ID change. Either a
// still-valid credential or email/password must be supplied; when both are
// present the credential is probed first and login is the fallback.
type ChangeIdentifierParams struct {
	Credential string
	Email      string
	Password   string

	NewLocalID string

	// Optional stat overrides applied alongside the ID change
	NameOverride  string
	MoneyOverride json.Number
}

// ChangeIdentifier rewrites an account's local ID across the player record
// and every owned vehicle. The returned result is always non-nil; a non-nil
// error marks the operation as fatally failed (auth, account fetch, no-op
// guard or account save), in which case no further mutation was attempted.
func (s *Service) ChangeIdentifier(ctx context.Context, params ChangeIdentifierParams) (*model.OperationResult, error) {
	started := s.clock.Now()

	// Step 1-2: resolve a credential and fetch the player record. A probe
	// of the supplied credential doubles as the account fetch.
	credential := params.Credential
	var rec *model.PlayerRecord
	if credential != "" {
		fetched, err := s.backend.FetchPlayerRecord(ctx, credential)
		if err != nil {
			s.logger.Info("credential probe failed, falling back to login")
			credential = ""
		} else {
			rec = fetched
		}
	}
	if credential == "" {
		if params.Email == "" || params.Password == "" {
			err := model.NewAuthError("no valid credential and no login credentials supplied")
			return s.fatal("change_localid", "", params.NewLocalID, started, err), err
		}
		cred, err := s.identity.SignIn(ctx, params.Email, params.Password)
		if err != nil {
			return s.fatal("change_localid", "", params.NewLocalID, started, err), err
		}
		credential = cred.IDToken

		rec, err = s.backend.FetchPlayerRecord(ctx, credential)
		if err != nil {
			return s.fatal("change_localid", "", params.NewLocalID, started, err), err
		}
	}

	oldCanonical := rec.LocalID
	oldClean := rewrite.CleanID(oldCanonical)

	// Step 3: no-op guard. Zero save calls happen past this point if the
	// requested ID is already in place.
	if params.NewLocalID == oldClean {
		err := fmt.Errorf("%w: %q", model.ErrNoOp, oldClean)
		return s.fatal("change_localid", oldClean, params.NewLocalID, started, err), err
	}

	// Step 4: vehicles are best-effort; a failed list fetch degrades to
	// zero vehicles instead of aborting.
	cars, err := s.backend.FetchVehicleList(ctx, credential)
	if err != nil {
		s.logger.Warn("vehicle list fetch failed, continuing with zero vehicles",
			slog.String("error", err.Error()))
		cars = nil
	}

	// Step 5: mutate and save the player record
	rec.LocalID = params.NewLocalID
	if params.NameOverride != "" {
		rec.Name = params.NameOverride
	}
	if params.MoneyOverride != "" {
		rec.Money = params.MoneyOverride
	}

	serialized, err := json.Marshal(rec)
	if err != nil {
		err = fmt.Errorf("%w: %s", model.ErrParse, err)
		return s.fatal("change_localid", oldClean, params.NewLocalID, started, err), err
	}
	serialized = s.rewriter.Rewrite(serialized, oldCanonical, oldClean, params.NewLocalID)
	serialized = sanitize.Record(serialized)

	if err := s.backend.SavePlayerRecord(ctx, credential, serialized); err != nil {
		return s.fatal("change_localid", oldClean, params.NewLocalID, started, err), err
	}

	// Step 6: per-vehicle rewrite and save, tallied, never fatal
	updated, failed := s.saveVehicles(ctx, credential, cars, oldCanonical, oldClean, params.NewLocalID)

	result := &model.OperationResult{
		Success: true,
		Message: fmt.Sprintf("local ID changed from %q to %q", oldClean, params.NewLocalID),
		Details: &model.OperationDetails{
			OldLocalID:  oldClean,
			NewLocalID:  params.NewLocalID,
			CarsUpdated: updated,
			CarsFailed:  failed,
			TotalCars:   len(cars),
		},
	}
	if failed > 0 {
		result.Message += fmt.Sprintf(" (%d of %d vehicle saves failed)", failed, len(cars))
	}

	s.logOperation("change_localid", result, started)
	return result, nil
}

// CloneAccountParams carries the inputs for an account clone
type CloneAccountParams struct {
	SourceCredential string
	TargetEmail      string
	TargetPassword   string

	// NewLocalID is optional; empty means a random destination ID
	NewLocalID string
}

// CloneAccount copies the source account's player record and vehicles into
// the target account under a new local ID. Result/error semantics match
// ChangeIdentifier.
func (s *Service) CloneAccount(ctx context.Context, params CloneAccountParams) (*model.OperationResult, error) {
	started := s.clock.Now()

	// Step 1: the source fetch validates the source credential
	srcRec, err := s.backend.FetchPlayerRecord(ctx, params.SourceCredential)
	if err != nil {
		if !errors.Is(err, model.ErrAuth) {
			err = fmt.Errorf("%w: source account: %s", model.ErrFetch, err)
		}
		return s.fatal("clone_account", "", params.NewLocalID, started, err), err
	}

	oldCanonical := srcRec.LocalID
	oldClean := rewrite.CleanID(oldCanonical)

	// Step 2: source vehicles, best-effort
	cars, err := s.backend.FetchVehicleList(ctx, params.SourceCredential)
	if err != nil {
		s.logger.Warn("source vehicle fetch failed, cloning zero vehicles",
			slog.String("error", err.Error()))
		cars = nil
	}

	// Step 3: authenticate the target account
	targetCred, err := s.identity.SignIn(ctx, params.TargetEmail, params.TargetPassword)
	if err != nil {
		return s.fatal("clone_account", oldClean, params.NewLocalID, started, err), err
	}

	// Step 4: destination identifier
	destID := params.NewLocalID
	if destID == "" {
		destID = s.random.String(s.cfg.NewIDLength, random.LocalIDAlphabet)
	}
	destID = strings.ToUpper(destID)

	// Step 5: rebuild and save the target player record
	target := srcRec.Clone()
	target.LocalID = destID
	if !s.cfg.CloneKeepExtra {
		target.Extra = nil
	}

	serialized, err := json.Marshal(target)
	if err != nil {
		err = fmt.Errorf("%w: %s", model.ErrParse, err)
		return s.fatal("clone_account", oldClean, destID, started, err), err
	}
	serialized = s.rewriter.Rewrite(serialized, oldCanonical, oldClean, destID)
	serialized = sanitize.Record(serialized)

	if err := s.backend.SavePlayerRecord(ctx, targetCred.IDToken, serialized); err != nil {
		return s.fatal("clone_account", oldClean, destID, started, err), err
	}

	// Step 6: clone vehicles under the target credential
	updated, failed := s.saveVehicles(ctx, targetCred.IDToken, cars, oldCanonical, oldClean, destID)

	result := &model.OperationResult{
		Success: true,
		Message: fmt.Sprintf("account cloned to %s with local ID %q", params.TargetEmail, destID),
		Details: &model.OperationDetails{
			OldLocalID:      oldClean,
			NewLocalID:      destID,
			CarsUpdated:     updated,
			CarsFailed:      failed,
			TotalCars:       len(cars),
			TargetEmail:     params.TargetEmail,
			TargetAccountID: targetCred.AccountID,
		},
	}
	if failed > 0 {
		result.Message += fmt.Sprintf(" (%d of %d vehicle saves failed)", failed, len(cars))
	}

	s.logOperation("clone_account", result, started)
	return result, nil
}

// saveVehicles rewrites and saves each vehicle individually, pacing saves
// with the configured delay. Individual failures are counted, never abort
// the loop.
func (s *Service) saveVehicles(ctx context.Context, credential string, cars []model.VehicleRecord, oldCanonical, oldClean, newID string) (updated, failed int) {
	for i, car := range cars {
		raw, err := json.Marshal(car)
		if err != nil {
			failed++
			continue
		}

		raw = s.rewriter.Rewrite(raw, oldCanonical, oldClean, newID)

		// The embedded-identifier field gets an explicit pass on top of
		// the textual rewrite, in case the field survived reparse fallback
		var rewritten model.VehicleRecord
		if err := json.Unmarshal(raw, &rewritten); err == nil && rewritten.CarID != "" {
			carID := strings.ReplaceAll(rewritten.CarID, oldCanonical, newID)
			if oldClean != oldCanonical {
				carID = strings.ReplaceAll(carID, oldClean, newID)
			}
			if carID != rewritten.CarID {
				rewritten.CarID = carID
				if reserialized, err := json.Marshal(rewritten); err == nil {
					raw = reserialized
				}
			}
		}

		raw = sanitize.Record(raw)

		if err := s.backend.SaveVehicle(ctx, credential, raw); err != nil {
			s.logger.Warn("vehicle save failed",
				slog.String("car_id", car.CarID),
				slog.String("error", err.Error()),
			)
			failed++
		} else {
			updated++
		}

		if s.cfg.VehicleSaveDelay > 0 && i < len(cars)-1 {
			select {
			case <-ctx.Done():
				failed += len(cars) - i - 1
				return updated, failed
			case <-time.After(s.cfg.VehicleSaveDelay):
			}
		}
	}
	return updated, failed
}

// fatal builds the failure result for a short-circuited operation and logs it
func (s *Service) fatal(kind, oldID, newID string, started time.Time, opErr error) *model.OperationResult {
	result := &model.OperationResult{
		Success: false,
		Message: opErr.Error(),
		Details: &model.OperationDetails{
			OldLocalID: oldID,
			NewLocalID: newID,
		},
	}
	s.logOperation(kind, result, started)
	return result
}

// logOperation records the run in the operation log; auditing is
// best-effort and never affects the operation outcome.
func (s *Service) logOperation(kind string, result *model.OperationResult, started time.Time) {
	entry := &model.OperationLogEntry{
		ID:        fmt.Sprintf("op_%d_%s", started.UnixMilli(), s.random.String(6, random.LocalIDAlphabet)),
		Kind:      kind,
		Success:   result.Success,
		Message:   result.Message,
		StartedAt: started,
		Duration:  s.clock.Now().Sub(started).Milliseconds(),
	}
	if result.Details != nil {
		entry.OldLocalID = result.Details.OldLocalID
		entry.NewLocalID = result.Details.NewLocalID
		entry.CarsUpdated = result.Details.CarsUpdated
		entry.CarsFailed = result.Details.CarsFailed
	}

	if err := s.store.SaveOperationLog(context.Background(), entry); err != nil {
		s.logger.Warn("failed to record operation log", slog.String("error", err.Error()))
	}
}
