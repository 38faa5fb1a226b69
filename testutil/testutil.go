// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/hammerboard/cliparse"
	"github.com/danielhkuo/hammerboard/db"
	"github.com/danielhkuo/hammerboard/models"
)

// TestAdminName is the privileged display name used by GetTestConfig
const TestAdminName = "王秋生"

// TestUserAgent is sent by MakeRequest unless overridden
const TestUserAgent = "hammerboard-test/1.0"

// TestOrigin is the one cross-origin caller GetTestConfig allows
const TestOrigin = "https://board.example"

// ErrInjected is returned by FailingStore
var ErrInjected = errors.New("injected store failure")

// SetupTestStore opens a fresh SQLite-backed store in a temp directory
func SetupTestStore(t *testing.T) db.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "board.db")
	kv, err := db.Open(context.Background(), db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	return kv
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		StoreType:      db.TypeSQLite,
		AdminName:      TestAdminName,
		CookieName:     "hsid",
		CookieSecure:   true,
		AllowedOrigins: []string{TestOrigin},
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// FailingStore wraps a store and fails Get or Put for keys the
// predicates select. Nil predicates never fail.
type FailingStore struct {
	db.Store
	FailGet func(key string) bool
	FailPut func(key string) bool
}

func (f *FailingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.FailGet != nil && f.FailGet(key) {
		return nil, ErrInjected
	}
	return f.Store.Get(ctx, key)
}

func (f *FailingStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.FailPut != nil && f.FailPut(key) {
		return ErrInjected
	}
	return f.Store.Put(ctx, key, value, ttl)
}

// KeyPrefix selects keys starting with prefix
func KeyPrefix(prefix string) func(string) bool {
	return func(key string) bool { return strings.HasPrefix(key, prefix) }
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, strings.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	default:
		jsonBody, _ := json.Marshal(b)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", TestUserAgent)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// WithVoter attaches the voter cookie to r
func WithVoter(r *http.Request, token string) *http.Request {
	r.AddCookie(&http.Cookie{Name: "hsid", Value: token})
	return r
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertError checks for {ok:false, error:code} with the given status
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	AssertStatus(t, w, status)

	var resp models.ErrorResponse
	AssertJSON(t, w, &resp)
	if resp.OK {
		t.Error("Expected ok=false")
	}
	if resp.Error != code {
		t.Errorf("Expected error %s, got %s", code, resp.Error)
	}
}

// DecodeState checks for a 200 {ok:true, state} answer and returns state
func DecodeState(t *testing.T, w *httptest.ResponseRecorder) *models.StateDocument {
	t.Helper()
	AssertStatus(t, w, http.StatusOK)

	var resp models.StateResponse
	AssertJSON(t, w, &resp)
	if !resp.OK || resp.State == nil {
		t.Fatalf("Expected ok=true with state, got %+v", resp)
	}
	return resp.State
}

// ResponseCookie returns the named cookie set by the response, or nil
func ResponseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
