// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/hammerboard/auth"
	"github.com/danielhkuo/hammerboard/db"
	"github.com/danielhkuo/hammerboard/models"
	"github.com/danielhkuo/hammerboard/moderation"
	"github.com/danielhkuo/hammerboard/store"
	"github.com/danielhkuo/hammerboard/testutil"
)

// httptest.NewRequest uses this address
const testClientIP = "192.0.2.1"

var testNow = time.UnixMilli(1_700_000_000_000)

func newVotingHandler(kv db.Store) *VotingHandler {
	h := NewVotingHandler(kv, moderation.Default(), testutil.GetTestConfig())
	h.now = func() time.Time { return testNow }
	return h
}

func newToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateVoterToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

func castVote(h *VotingHandler, token string, body interface{}) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("POST", "/vote", body, nil)
	if token != "" {
		testutil.WithVoter(req, token)
	}
	w := httptest.NewRecorder()
	h.CastVote(w, req)
	return w
}

func unsoldVote(lot, name string) map[string]interface{} {
	return map[string]interface{}{"lot": lot, "type": "UNSOLD", "name": name}
}

func priceVote(lot, name string, price interface{}) map[string]interface{} {
	return map[string]interface{}{"lot": lot, "type": "PRICE", "name": name, "price": price}
}

func TestCastVote_Validation(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	h := newVotingHandler(kv)

	tests := []struct {
		name         string
		body         interface{}
		expectedCode string
	}{
		{"malformed JSON", `{"lot":`, models.CodeBadJSON},
		{"null body", `null`, models.CodeBadJSON},
		{"object as name", `{"lot":"lot1","type":"UNSOLD","name":{}}`, models.CodeBadJSON},
		{"unknown lot", unsoldVote("lot3", "Alice"), models.CodeBadLot},
		{"comment-only lot", unsoldVote("all", "Alice"), models.CodeBadLot},
		{"unknown type", map[string]interface{}{"lot": "lot1", "type": "MAYBE", "name": "Alice"}, models.CodeBadType},
		{"lot checked before type", map[string]interface{}{"lot": "x", "type": "x", "name": ""}, models.CodeBadLot},
		{"blank name", unsoldVote("lot1", "   "), models.CodeNameRequired},
		{"name too long", unsoldVote("lot1", strings.Repeat("名", 31)), models.CodeNameTooLong},
		{"profane name", unsoldVote("lot1", "傻瓜"), models.CodeNameProfanity},
		{"restricted title", unsoldVote("lot1", "總統先生"), models.CodeNameDisallowed},
		{"name checked before price", priceVote("lot1", "", "abc"), models.CodeNameRequired},
		{"missing price", map[string]interface{}{"lot": "lot1", "type": "PRICE", "name": "Alice"}, models.CodeBadPrice},
		{"non-numeric price", priceVote("lot1", "Alice", "abc"), models.CodeBadPrice},
		{"zero price", priceVote("lot1", "Alice", 0), models.CodeBadPrice},
		{"negative price", priceVote("lot1", "Alice", -5), models.CodeBadPrice},
		{"price too high", priceVote("lot1", "Alice", 5_000_001), models.CodePriceTooHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := castVote(h, "", tt.body)
			testutil.AssertError(t, w, http.StatusBadRequest, tt.expectedCode)

			// Rejected before identity resolution
			if c := testutil.ResponseCookie(w, "hsid"); c != nil {
				t.Error("Expected no cookie on a validation error")
			}
		})
	}

	// Nothing was written
	if _, err := kv.Get(context.Background(), store.StateKey); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Expected no state document, got err=%v", err)
	}
}

func TestCastVote_EndToEnd(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	h := newVotingHandler(kv)

	w := castVote(h, newToken(t), unsoldVote("lot1", "Alice"))
	testutil.DecodeState(t, w)

	w = castVote(h, newToken(t), priceVote("lot1", "Bob", 1000))
	state := testutil.DecodeState(t, w)

	lot1 := state.Lots[models.Lot1]
	if lot1.Unsold != 1 {
		t.Errorf("Expected unsold 1, got %d", lot1.Unsold)
	}
	if len(lot1.Prices) != 1 || lot1.Prices[0] != 1000 {
		t.Errorf("Expected prices [1000], got %v", lot1.Prices)
	}
	if len(lot1.Series) != 2 || lot1.Series[0].V != 0 || lot1.Series[1].V != 50 {
		t.Errorf("Expected series values [0 50], got %+v", lot1.Series)
	}
	for _, p := range lot1.Series {
		if p.TS != testNow.UnixMilli() {
			t.Errorf("Expected series ts %d, got %d", testNow.UnixMilli(), p.TS)
		}
	}

	lot2 := state.Lots[models.Lot2]
	if lot2.Unsold != 0 || len(lot2.Prices) != 0 || len(lot2.Series) != 0 {
		t.Errorf("Expected lot2 untouched, got %+v", lot2)
	}
	if state.UpdatedAt == 0 {
		t.Error("Expected updatedAt to be stamped")
	}
}

func TestCastVote_PriceFormats(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	h := newVotingHandler(kv)

	castVote(h, newToken(t), priceVote("lot2", "Alice", 123.45))
	castVote(h, newToken(t), priceVote("lot2", "Bob", " 5000000 "))
	w := castVote(h, newToken(t), priceVote("lot2", "Carol", "2500.5"))

	state := testutil.DecodeState(t, w)
	want := []float64{123.45, 5_000_000, 2500.5}
	got := state.Lots[models.Lot2].Prices
	if len(got) != len(want) {
		t.Fatalf("Expected prices %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("price[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCastVote_DuplicateVote(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	h := newVotingHandler(kv)
	token := newToken(t)

	w := castVote(h, token, unsoldVote("lot1", "Alice"))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Same fingerprint, same lot, any vote type and any name
	w = castVote(h, token, priceVote("lot1", "Someone Else", 10))
	testutil.AssertError(t, w, http.StatusConflict, models.CodeAlreadyVoted)

	// The other lot is still open
	w = castVote(h, token, unsoldVote("lot2", "Alice"))
	testutil.AssertStatus(t, w, http.StatusOK)

	// The rejected vote left no trace
	w = httptest.NewRecorder()
	NewStateHandler(kv).GetState(w, httptest.NewRequest("GET", "/state", nil))
	state := testutil.DecodeState(t, w)
	if state.Lots[models.Lot1].Unsold != 1 || len(state.Lots[models.Lot1].Prices) != 0 {
		t.Errorf("Expected lot1 {unsold:1, prices:[]}, got %+v", state.Lots[models.Lot1])
	}

	// Lock is recorded under the fingerprint
	fp := auth.Fingerprint(testClientIP, testutil.TestUserAgent, token)
	v, err := kv.Get(context.Background(), store.LockKey(models.Lot1, fp))
	if err != nil || string(v) != "1" {
		t.Errorf("Expected lock value 1, got %q err=%v", v, err)
	}
}

func TestCastVote_DifferentAgentIsDifferentVoter(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	h := newVotingHandler(kv)
	token := newToken(t)

	castVote(h, token, unsoldVote("lot1", "Alice"))

	req := testutil.MakeRequest("POST", "/vote", unsoldVote("lot1", "Alice"), map[string]string{"User-Agent": "other-browser"})
	testutil.WithVoter(req, token)
	w := httptest.NewRecorder()
	h.CastVote(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestCastVote_ForwardedHeadersIgnored(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	h := newVotingHandler(kv)
	token := newToken(t)

	forwarded := []map[string]string{
		{"X-Forwarded-For": "1.1.1.1"},
		{"X-Forwarded-For": "2.2.2.2"},
		{"X-Forwarded-For": "3.3.3.3, 10.0.0.1"},
		{"X-Real-IP": "4.4.4.4"},
	}

	for i, headers := range forwarded {
		req := testutil.MakeRequest("POST", "/vote", unsoldVote("lot2", "Alice"), headers)
		testutil.WithVoter(req, token)
		w := httptest.NewRecorder()
		h.CastVote(w, req)

		if i == 0 {
			testutil.AssertStatus(t, w, http.StatusOK)
			continue
		}
		testutil.AssertError(t, w, http.StatusConflict, models.CodeAlreadyVoted)
	}

	w := httptest.NewRecorder()
	NewStateHandler(kv).GetState(w, httptest.NewRequest("GET", "/state", nil))
	state := testutil.DecodeState(t, w)
	if state.Lots[models.Lot2].Unsold != 1 {
		t.Errorf("Expected one vote counted, got %d", state.Lots[models.Lot2].Unsold)
	}

	// The lock is keyed on the connection address
	fp := auth.Fingerprint(testClientIP, testutil.TestUserAgent, token)
	if _, err := kv.Get(context.Background(), store.LockKey(models.Lot2, fp)); err != nil {
		t.Errorf("Expected lock under the connection address, got err=%v", err)
	}
}

func TestCastVote_TrustedProxyHeaders(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	cfg.TrustProxyHeaders = true
	h := NewVotingHandler(kv, moderation.Default(), cfg)
	h.now = func() time.Time { return testNow }
	token := newToken(t)

	// Behind a proxy the forwarded address is the client address
	for _, ip := range []string{"198.51.100.1", "198.51.100.2"} {
		req := testutil.MakeRequest("POST", "/vote", unsoldVote("lot1", "Alice"), map[string]string{"X-Forwarded-For": ip})
		testutil.WithVoter(req, token)
		w := httptest.NewRecorder()
		h.CastVote(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		fp := auth.Fingerprint(ip, testutil.TestUserAgent, token)
		if _, err := kv.Get(context.Background(), store.LockKey(models.Lot1, fp)); err != nil {
			t.Errorf("Expected lock under forwarded address %s, got err=%v", ip, err)
		}
	}

	req := testutil.MakeRequest("POST", "/vote", unsoldVote("lot1", "Alice"), map[string]string{"X-Forwarded-For": "198.51.100.1"})
	testutil.WithVoter(req, token)
	w := httptest.NewRecorder()
	h.CastVote(w, req)
	testutil.AssertError(t, w, http.StatusConflict, models.CodeAlreadyVoted)
}

func TestCastVote_NonStringName(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	h := newVotingHandler(kv)

	w := castVote(h, newToken(t), `{"lot":"lot1","type":"PRICE","price":900,"name":42}`)
	state := testutil.DecodeState(t, w)

	if len(state.Lots[models.Lot1].Prices) != 1 {
		t.Errorf("Expected the vote to count, got %+v", state.Lots[models.Lot1])
	}

	// false reads as no name at all
	w = castVote(h, newToken(t), `{"lot":"lot1","type":"UNSOLD","name":false}`)
	testutil.AssertError(t, w, http.StatusBadRequest, models.CodeNameRequired)
}

func TestCastVote_PrivilegedBypass(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	h := newVotingHandler(kv)
	token := newToken(t)

	for i := 0; i < 3; i++ {
		w := castVote(h, token, unsoldVote("lot1", "  "+testutil.TestAdminName+" "))
		testutil.AssertStatus(t, w, http.StatusOK)
	}
	w := castVote(h, token, priceVote("lot2", testutil.TestAdminName, 800))
	state := testutil.DecodeState(t, w)

	if state.Lots[models.Lot1].Unsold != 3 {
		t.Errorf("Expected 3 privileged votes counted, got %d", state.Lots[models.Lot1].Unsold)
	}

	// No lock is written for the privileged name
	fp := auth.Fingerprint(testClientIP, testutil.TestUserAgent, token)
	if _, err := kv.Get(context.Background(), store.LockKey(models.Lot1, fp)); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Expected no lock for privileged votes, got err=%v", err)
	}

	// Same browser voting under a normal name is still limited once
	w = castVote(h, token, unsoldVote("lot1", "Alice"))
	testutil.AssertStatus(t, w, http.StatusOK)
	w = castVote(h, token, unsoldVote("lot1", "Alice"))
	testutil.AssertError(t, w, http.StatusConflict, models.CodeAlreadyVoted)
}

func TestCastVote_PrivilegeDisabled(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	cfg.AdminName = ""
	h := NewVotingHandler(kv, moderation.Default(), cfg)
	token := newToken(t)

	castVote(h, token, unsoldVote("lot1", testutil.TestAdminName))
	w := castVote(h, token, unsoldVote("lot1", testutil.TestAdminName))
	testutil.AssertError(t, w, http.StatusConflict, models.CodeAlreadyVoted)
}

func TestCastVote_Cookie(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	h := newVotingHandler(kv)

	t.Run("new voter gets a cookie", func(t *testing.T) {
		w := castVote(h, "", unsoldVote("lot1", "Alice"))
		testutil.AssertStatus(t, w, http.StatusOK)

		c := testutil.ResponseCookie(w, "hsid")
		if c == nil {
			t.Fatal("Expected hsid cookie")
		}
		if len(c.Value) != auth.TokenLength || auth.ValidateVoterToken(c.Value) != nil {
			t.Errorf("Unexpected token %q", c.Value)
		}
		if c.Path != "/" || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.MaxAge != 31536000 {
			t.Errorf("Unexpected cookie attributes: %+v", c)
		}

		// The minted token is the one locked
		fp := auth.Fingerprint(testClientIP, testutil.TestUserAgent, c.Value)
		if _, err := kv.Get(context.Background(), store.LockKey(models.Lot1, fp)); err != nil {
			t.Errorf("Expected lock under the minted token, got %v", err)
		}

		w = castVote(h, c.Value, unsoldVote("lot1", "Alice"))
		testutil.AssertError(t, w, http.StatusConflict, models.CodeAlreadyVoted)
	})

	t.Run("known voter gets no cookie", func(t *testing.T) {
		w := castVote(h, newToken(t), unsoldVote("lot2", "Bob"))
		testutil.AssertStatus(t, w, http.StatusOK)
		if c := testutil.ResponseCookie(w, "hsid"); c != nil {
			t.Errorf("Expected no cookie, got %+v", c)
		}
	})

	t.Run("malformed cookie is replaced", func(t *testing.T) {
		w := castVote(h, "not a token!", unsoldVote("lot2", "Carol"))
		testutil.AssertStatus(t, w, http.StatusOK)
		c := testutil.ResponseCookie(w, "hsid")
		if c == nil || c.Value == "not a token!" {
			t.Errorf("Expected a replacement cookie, got %+v", c)
		}
	})
}

func TestCastVote_StorageErrors(t *testing.T) {
	tests := []struct {
		name    string
		failGet func(string) bool
		failPut func(string) bool
	}{
		{"lock check fails", testutil.KeyPrefix("lock:"), nil},
		{"state load fails", testutil.KeyPrefix(store.StateKey), nil},
		{"state save fails", nil, testutil.KeyPrefix(store.StateKey)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := db.NewMemoryStore()
			kv := &testutil.FailingStore{Store: base, FailGet: tt.failGet, FailPut: tt.failPut}
			h := newVotingHandler(kv)
			token := newToken(t)

			w := castVote(h, token, unsoldVote("lot1", "Alice"))
			testutil.AssertError(t, w, http.StatusInternalServerError, models.CodeStorageError)

			// A failed vote does not lock the voter out
			fp := auth.Fingerprint(testClientIP, testutil.TestUserAgent, token)
			if _, err := base.Get(context.Background(), store.LockKey(models.Lot1, fp)); !errors.Is(err, db.ErrNotFound) {
				t.Errorf("Expected no lock after a failed vote, got err=%v", err)
			}
		})
	}
}

func TestCastVote_LockWriteFailureTolerated(t *testing.T) {
	base := db.NewMemoryStore()
	kv := &testutil.FailingStore{Store: base, FailPut: testutil.KeyPrefix("lock:")}
	h := newVotingHandler(kv)
	token := newToken(t)

	w := castVote(h, token, unsoldVote("lot1", "Alice"))
	state := testutil.DecodeState(t, w)
	if state.Lots[models.Lot1].Unsold != 1 {
		t.Errorf("Expected the vote to count, got %+v", state.Lots[models.Lot1])
	}

	// Without a lock the same voter gets through again
	w = castVote(h, token, unsoldVote("lot1", "Alice"))
	state = testutil.DecodeState(t, w)
	if state.Lots[models.Lot1].Unsold != 2 {
		t.Errorf("Expected a second vote to count, got %+v", state.Lots[models.Lot1])
	}
}

func TestCastVote_LockTTL(t *testing.T) {
	kv := db.NewMemoryStore()
	cfg := testutil.GetTestConfig()
	cfg.LockTTL = time.Millisecond
	h := NewVotingHandler(kv, moderation.Default(), cfg)
	token := newToken(t)

	testutil.AssertStatus(t, castVote(h, token, unsoldVote("lot1", "Alice")), http.StatusOK)
	time.Sleep(5 * time.Millisecond)
	testutil.AssertStatus(t, castVote(h, token, unsoldVote("lot1", "Alice")), http.StatusOK)
}
