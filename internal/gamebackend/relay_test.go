package gamebackend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jbcacc/cpm-backend/internal/testutil"
)

type RelaySuite struct {
	suite.Suite
	relay *Relay
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.relay = NewRelay(5*time.Second, testutil.NopLogger())
}

func (s *RelaySuite) TestPostSendsJSONAndReturnsBody() {
	var gotBody map[string]any
	var gotContentType, gotAuth string
	var gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer server.Close()

	body := s.relay.Post(context.Background(), server.URL,
		map[string]any{"email": "a@b.c"},
		map[string]string{"Authorization": "Bearer tok"},
		url.Values{"key": []string{"apikey"}},
	)

	s.Require().NotNil(body)
	s.JSONEq(`{"result":"ok"}`, string(body))
	s.Equal("application/json", gotContentType)
	s.Equal("Bearer tok", gotAuth)
	s.Equal("apikey", gotKey)
	s.Equal("a@b.c", gotBody["email"])
}

func (s *RelaySuite) TestPostReturnsBodyOnErrorStatus() {
	// HTTP-level errors are responses; the backend reports its failures
	// inside the body.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"INVALID_PASSWORD"}}`))
	}))
	defer server.Close()

	body := s.relay.Post(context.Background(), server.URL, nil, nil, nil)

	s.Require().NotNil(body)
	s.JSONEq(`{"error":{"message":"INVALID_PASSWORD"}}`, string(body))
}

func (s *RelaySuite) TestPostNilOnNonJSONBody() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer server.Close()

	body := s.relay.Post(context.Background(), server.URL, nil, nil, nil)

	s.Nil(body)
}

func (s *RelaySuite) TestPostNilOnUnreachableHost() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	body := s.relay.Post(context.Background(), serverURL, nil, nil, nil)

	s.Nil(body)
}

func (s *RelaySuite) TestPostNilOnBadURL() {
	body := s.relay.Post(context.Background(), "://not-a-url", nil, nil, url.Values{"key": []string{"x"}})

	s.Nil(body)
}

func (s *RelaySuite) TestPostNilOnCancelledContext() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := s.relay.Post(ctx, server.URL, nil, nil, nil)

	s.Nil(body)
}

func (s *RelaySuite) TestPostNilOnUnmarshalablePayload() {
	body := s.relay.Post(context.Background(), "http://localhost:1", func() {}, nil, nil)

	s.Nil(body)
}
