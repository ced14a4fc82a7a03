package mutation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jbcacc/cpm-backend/internal/dependencies/mocks"
	"github.com/jbcacc/cpm-backend/internal/gamebackend"
	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/services/rewrite"
	"github.com/jbcacc/cpm-backend/internal/storage/memory"
	"github.com/jbcacc/cpm-backend/internal/testutil"
)

// fakeBackend is a scriptable Backend that records saves
type fakeBackend struct {
	record   *model.PlayerRecord
	vehicles []model.VehicleRecord

	fetchRecordErr     error
	fetchRecordErrOnce error
	fetchVehiclesErr   error
	saveRecordErr      error

	// saveVehicleErrs maps save-call index to an error
	saveVehicleErrs  map[int]error
	vehicleSaveCalls int

	savedRecords       []json.RawMessage
	savedRecordCreds   []string
	savedVehicles      []json.RawMessage
	savedVehicleCreds  []string
	fetchedCredentials []string
}

func (b *fakeBackend) FetchPlayerRecord(ctx context.Context, credential string) (*model.PlayerRecord, error) {
	b.fetchedCredentials = append(b.fetchedCredentials, credential)
	if b.fetchRecordErrOnce != nil {
		err := b.fetchRecordErrOnce
		b.fetchRecordErrOnce = nil
		return nil, err
	}
	if b.fetchRecordErr != nil {
		return nil, b.fetchRecordErr
	}
	return b.record.Clone(), nil
}

func (b *fakeBackend) FetchVehicleList(ctx context.Context, credential string) ([]model.VehicleRecord, error) {
	if b.fetchVehiclesErr != nil {
		return nil, b.fetchVehiclesErr
	}
	return b.vehicles, nil
}

func (b *fakeBackend) SavePlayerRecord(ctx context.Context, credential string, record json.RawMessage) error {
	if b.saveRecordErr != nil {
		return b.saveRecordErr
	}
	b.savedRecords = append(b.savedRecords, record)
	b.savedRecordCreds = append(b.savedRecordCreds, credential)
	return nil
}

func (b *fakeBackend) SaveVehicle(ctx context.Context, credential string, vehicle json.RawMessage) error {
	i := b.vehicleSaveCalls
	b.vehicleSaveCalls++
	if err, ok := b.saveVehicleErrs[i]; ok {
		return err
	}
	b.savedVehicles = append(b.savedVehicles, vehicle)
	b.savedVehicleCreds = append(b.savedVehicleCreds, credential)
	return nil
}

// fakeIdentity is a scriptable IdentityProvider
type fakeIdentity struct {
	credential *gamebackend.Credential
	err        error

	signIns []string
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*gamebackend.Credential, error) {
	f.signIns = append(f.signIns, email)
	if f.err != nil {
		return nil, f.err
	}
	return f.credential, nil
}

type MutationSuite struct {
	suite.Suite
	backend  *fakeBackend
	identity *fakeIdentity
	store    *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	service  *Service
}

func TestMutationSuite(t *testing.T) {
	suite.Run(t, new(MutationSuite))
}

func (s *MutationSuite) SetupTest() {
	s.backend = &fakeBackend{
		record: &model.PlayerRecord{
			LocalID: "ABC123",
			Name:    "Driver",
			Money:   "500",
			Extra: map[string]json.RawMessage{
				"xp": json.RawMessage(`1200`),
			},
		},
		vehicles: []model.VehicleRecord{
			{CarID: "ABC123-1", Extra: map[string]json.RawMessage{"model": json.RawMessage(`"gt500"`)}},
			{CarID: "ABC123-2", Extra: map[string]json.RawMessage{"model": json.RawMessage(`"m5"`)}},
		},
		saveVehicleErrs: map[int]error{},
	}
	s.identity = &fakeIdentity{
		credential: &gamebackend.Credential{
			IDToken:   "fresh-token",
			AccountID: "firebase-uid-1",
			Email:     "player@example.com",
		},
	}
	s.store = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()

	cfg := DefaultConfig()
	cfg.VehicleSaveDelay = 0

	s.service = New(
		s.backend,
		s.identity,
		rewrite.New(testutil.NopLogger()),
		s.store,
		s.clock,
		s.random,
		cfg,
		testutil.NopLogger(),
	)
}

// ChangeIdentifier tests

func (s *MutationSuite) TestChangeIdentifierRewritesAccountAndVehicles() {
	result, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential: "valid-token",
		NewLocalID: "XYZ999",
	})

	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal("ABC123", result.Details.OldLocalID)
	s.Equal("XYZ999", result.Details.NewLocalID)
	s.Equal(2, result.Details.CarsUpdated)
	s.Equal(0, result.Details.CarsFailed)
	s.Equal(2, result.Details.TotalCars)

	// Account record saved with the new ID, other fields intact
	s.Require().Len(s.backend.savedRecords, 1)
	var saved model.PlayerRecord
	s.Require().NoError(json.Unmarshal(s.backend.savedRecords[0], &saved))
	s.Equal("XYZ999", saved.LocalID)
	s.Equal("Driver", saved.Name)
	s.Equal(json.Number("500"), saved.Money)
	s.JSONEq(`1200`, string(saved.Extra["xp"]))

	// Every embedded vehicle identifier rewritten
	s.Require().Len(s.backend.savedVehicles, 2)
	carIDs := make([]string, 0, 2)
	for _, raw := range s.backend.savedVehicles {
		var car model.VehicleRecord
		s.Require().NoError(json.Unmarshal(raw, &car))
		carIDs = append(carIDs, car.CarID)
	}
	s.ElementsMatch([]string{"XYZ999-1", "XYZ999-2"}, carIDs)

	// No login happened; the supplied credential was good
	s.Empty(s.identity.signIns)
}

func (s *MutationSuite) TestChangeIdentifierAppliesStatOverrides() {
	result, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential:    "valid-token",
		NewLocalID:    "XYZ999",
		NameOverride:  "NewName",
		MoneyOverride: "999999",
	})

	s.Require().NoError(err)
	s.True(result.Success)

	var saved model.PlayerRecord
	s.Require().NoError(json.Unmarshal(s.backend.savedRecords[0], &saved))
	s.Equal("NewName", saved.Name)
	s.Equal(json.Number("999999"), saved.Money)
}

func (s *MutationSuite) TestChangeIdentifierFallsBackToLogin() {
	s.backend.fetchRecordErr = model.NewAuthError("token expired")

	result, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential: "stale-token",
		Email:      "player@example.com",
		Password:   "hunter2",
		NewLocalID: "XYZ999",
	})

	// The refetch with the fresh token still hits the scripted error, so
	// the operation fails, but the fallback login must have been attempted.
	s.Error(err)
	s.False(result.Success)
	s.Equal([]string{"player@example.com"}, s.identity.signIns)
	s.Equal([]string{"stale-token", "fresh-token"}, s.backend.fetchedCredentials)
}

func (s *MutationSuite) TestChangeIdentifierLoginFallbackSucceeds() {
	// Probe of the stale token fails once; the refetch with the fresh
	// token succeeds.
	s.backend.fetchRecordErrOnce = model.NewAuthError("token expired")

	result, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential: "stale-token",
		Email:      "player@example.com",
		Password:   "hunter2",
		NewLocalID: "XYZ999",
	})

	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal([]string{"player@example.com"}, s.identity.signIns)
	// All saves went out under the fresh token
	s.Equal([]string{"fresh-token"}, s.backend.savedRecordCreds)
}

func (s *MutationSuite) TestChangeIdentifierNoCredentialsAtAll() {
	result, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		NewLocalID: "XYZ999",
	})

	s.Require().Error(err)
	s.ErrorIs(err, model.ErrAuth)
	s.False(result.Success)
	s.Empty(s.backend.savedRecords)
}

func (s *MutationSuite) TestChangeIdentifierAuthFailureIsFatal() {
	s.identity.err = model.NewAuthError("INVALID_PASSWORD")

	result, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Email:      "player@example.com",
		Password:   "wrong",
		NewLocalID: "XYZ999",
	})

	s.Require().Error(err)
	s.ErrorIs(err, model.ErrAuth)
	s.False(result.Success)
	s.Empty(s.backend.savedRecords)
	s.Empty(s.backend.savedVehicles)
}

func (s *MutationSuite) TestChangeIdentifierNoOpGuard() {
	result, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential: "valid-token",
		NewLocalID: "ABC123",
	})

	s.Require().Error(err)
	s.ErrorIs(err, model.ErrNoOp)
	s.False(result.Success)
	// Zero save calls happen once the guard trips
	s.Empty(s.backend.savedRecords)
	s.Empty(s.backend.savedVehicles)
}

func (s *MutationSuite) TestChangeIdentifierNoOpGuardComparesCleanID() {
	// The stored ID carries a color code; the cleaned form matches the
	// requested one, so this is still a no-op.
	s.backend.record.LocalID = "[FF0000]ABC123"

	_, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential: "valid-token",
		NewLocalID: "ABC123",
	})

	s.ErrorIs(err, model.ErrNoOp)
}

func (s *MutationSuite) TestChangeIdentifierVehicleFetchFailureDegrades() {
	s.backend.fetchVehiclesErr = errors.New("fetch blew up")

	result, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential: "valid-token",
		NewLocalID: "XYZ999",
	})

	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal(0, result.Details.TotalCars)
	s.Len(s.backend.savedRecords, 1)
}

func (s *MutationSuite) TestChangeIdentifierAccountSaveFailureIsFatal() {
	s.backend.saveRecordErr = model.ErrSave

	result, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential: "valid-token",
		NewLocalID: "XYZ999",
	})

	s.Require().Error(err)
	s.ErrorIs(err, model.ErrSave)
	s.False(result.Success)
	// The vehicle loop never ran
	s.Empty(s.backend.savedVehicles)
}

func (s *MutationSuite) TestChangeIdentifierTalliesVehicleFailures() {
	s.backend.vehicles = []model.VehicleRecord{
		{CarID: "ABC123-1"},
		{CarID: "ABC123-2"},
		{CarID: "ABC123-3"},
	}
	s.backend.saveVehicleErrs[1] = errors.New("save rejected")

	result, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential: "valid-token",
		NewLocalID: "XYZ999",
	})

	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal(2, result.Details.CarsUpdated)
	s.Equal(1, result.Details.CarsFailed)
	s.Equal(3, result.Details.TotalCars)
	s.Contains(result.Message, "1 of 3 vehicle saves failed")
}

func (s *MutationSuite) TestChangeIdentifierStripsPersistenceFields() {
	s.backend.record.Extra["_id"] = json.RawMessage(`"507f1f77"`)
	s.backend.record.Extra["updatedAt"] = json.RawMessage(`"2024-01-01"`)

	_, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential: "valid-token",
		NewLocalID: "XYZ999",
	})

	s.Require().NoError(err)

	var tree map[string]any
	s.Require().NoError(json.Unmarshal(s.backend.savedRecords[0], &tree))
	s.NotContains(tree, "_id")
	s.NotContains(tree, "updatedAt")
	s.Contains(tree, "xp")
}

func (s *MutationSuite) TestChangeIdentifierWritesOperationLog() {
	_, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Credential: "valid-token",
		NewLocalID: "XYZ999",
	})
	s.Require().NoError(err)

	entries, err := s.store.ListOperationLogs(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("change_localid", entries[0].Kind)
	s.True(entries[0].Success)
	s.Equal("ABC123", entries[0].OldLocalID)
	s.Equal("XYZ999", entries[0].NewLocalID)
	s.Equal(2, entries[0].CarsUpdated)
}

func (s *MutationSuite) TestChangeIdentifierLogsFatalFailures() {
	s.identity.err = model.NewAuthError("EMAIL_NOT_FOUND")

	_, err := s.service.ChangeIdentifier(context.Background(), ChangeIdentifierParams{
		Email:      "nobody@example.com",
		Password:   "x",
		NewLocalID: "XYZ999",
	})
	s.Require().Error(err)

	entries, err := s.store.ListOperationLogs(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.False(entries[0].Success)
}

// CloneAccount tests

func (s *MutationSuite) TestCloneAccountWithCustomID() {
	result, err := s.service.CloneAccount(context.Background(), CloneAccountParams{
		SourceCredential: "source-token",
		TargetEmail:      "target@example.com",
		TargetPassword:   "hunter2",
		NewLocalID:       "MYID001",
	})

	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal("ABC123", result.Details.OldLocalID)
	s.Equal("MYID001", result.Details.NewLocalID)
	s.Equal("target@example.com", result.Details.TargetEmail)
	s.Equal("firebase-uid-1", result.Details.TargetAccountID)
	s.Equal(2, result.Details.CarsUpdated)

	// Fetches used the source credential, saves the target's token
	s.Equal([]string{"source-token"}, s.backend.fetchedCredentials)
	s.Equal([]string{"fresh-token"}, s.backend.savedRecordCreds)
	s.Equal([]string{"fresh-token", "fresh-token"}, s.backend.savedVehicleCreds)

	var saved model.PlayerRecord
	s.Require().NoError(json.Unmarshal(s.backend.savedRecords[0], &saved))
	s.Equal("MYID001", saved.LocalID)
	s.Equal("Driver", saved.Name)
}

func (s *MutationSuite) TestCloneAccountLowercaseCustomIDIsUppercased() {
	result, err := s.service.CloneAccount(context.Background(), CloneAccountParams{
		SourceCredential: "source-token",
		TargetEmail:      "target@example.com",
		TargetPassword:   "hunter2",
		NewLocalID:       "myid001",
	})

	s.Require().NoError(err)
	s.Equal("MYID001", result.Details.NewLocalID)
}

func (s *MutationSuite) TestCloneAccountGeneratesRandomID() {
	s.random.QueueString("k7m2p9q4w8z3")

	result, err := s.service.CloneAccount(context.Background(), CloneAccountParams{
		SourceCredential: "source-token",
		TargetEmail:      "target@example.com",
		TargetPassword:   "hunter2",
	})

	s.Require().NoError(err)
	s.Equal("K7M2P9Q4W8Z3", result.Details.NewLocalID)
}

func (s *MutationSuite) TestCloneAccountRewritesVehicles() {
	_, err := s.service.CloneAccount(context.Background(), CloneAccountParams{
		SourceCredential: "source-token",
		TargetEmail:      "target@example.com",
		TargetPassword:   "hunter2",
		NewLocalID:       "MYID001",
	})
	s.Require().NoError(err)

	s.Require().Len(s.backend.savedVehicles, 2)
	carIDs := make([]string, 0, 2)
	for _, raw := range s.backend.savedVehicles {
		var car model.VehicleRecord
		s.Require().NoError(json.Unmarshal(raw, &car))
		carIDs = append(carIDs, car.CarID)
	}
	s.ElementsMatch([]string{"MYID001-1", "MYID001-2"}, carIDs)
}

func (s *MutationSuite) TestCloneAccountSourceFetchFailureIsFatal() {
	s.backend.fetchRecordErr = errors.New("backend down")

	result, err := s.service.CloneAccount(context.Background(), CloneAccountParams{
		SourceCredential: "source-token",
		TargetEmail:      "target@example.com",
		TargetPassword:   "hunter2",
	})

	s.Require().Error(err)
	s.ErrorIs(err, model.ErrFetch)
	s.False(result.Success)
	s.Empty(s.identity.signIns)
}

func (s *MutationSuite) TestCloneAccountTargetAuthFailureIsFatal() {
	s.identity.err = model.NewAuthError("INVALID_PASSWORD")

	result, err := s.service.CloneAccount(context.Background(), CloneAccountParams{
		SourceCredential: "source-token",
		TargetEmail:      "target@example.com",
		TargetPassword:   "wrong",
	})

	s.Require().Error(err)
	s.ErrorIs(err, model.ErrAuth)
	s.False(result.Success)
	s.Empty(s.backend.savedRecords)
}

func (s *MutationSuite) TestCloneAccountDropExtraWhenConfigured() {
	cfg := DefaultConfig()
	cfg.VehicleSaveDelay = 0
	cfg.CloneKeepExtra = false
	s.service = New(s.backend, s.identity, rewrite.New(testutil.NopLogger()),
		s.store, s.clock, s.random, cfg, testutil.NopLogger())

	_, err := s.service.CloneAccount(context.Background(), CloneAccountParams{
		SourceCredential: "source-token",
		TargetEmail:      "target@example.com",
		TargetPassword:   "hunter2",
		NewLocalID:       "MYID001",
	})
	s.Require().NoError(err)

	var tree map[string]any
	s.Require().NoError(json.Unmarshal(s.backend.savedRecords[0], &tree))
	s.NotContains(tree, "xp")
	s.Equal("MYID001", tree["localID"])
}

func (s *MutationSuite) TestCloneAccountWritesOperationLog() {
	_, err := s.service.CloneAccount(context.Background(), CloneAccountParams{
		SourceCredential: "source-token",
		TargetEmail:      "target@example.com",
		TargetPassword:   "hunter2",
		NewLocalID:       "MYID001",
	})
	s.Require().NoError(err)

	entries, err := s.store.ListOperationLogs(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("clone_account", entries[0].Kind)
	s.Equal("MYID001", entries[0].NewLocalID)
}

// Vehicle pacing tests

func (s *MutationSuite) TestVehicleLoopStopsOnCancelledContext() {
	cfg := DefaultConfig()
	cfg.VehicleSaveDelay = time.Hour
	s.service = New(s.backend, s.identity, rewrite.New(testutil.NopLogger()),
		s.store, s.clock, s.random, cfg, testutil.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.service.ChangeIdentifier(ctx, ChangeIdentifierParams{
		Credential: "valid-token",
		NewLocalID: "XYZ999",
	})

	s.Require().NoError(err)
	// The first save goes through, then the delay sees the dead context
	// and the remainder is counted as failed.
	s.Equal(1, result.Details.CarsUpdated)
	s.Equal(1, result.Details.CarsFailed)
	s.Equal(2, result.Details.TotalCars)
}
