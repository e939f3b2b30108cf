package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// idemSeen records what the handler observed.
type idemSeen struct {
	key    string
	replay bool
	bypass bool
}

type lookupCall struct {
	userID, scope, key string
}

func idemRouter(t *testing.T, opts IdempotencyOptions, lookup IdempotencyLookup, seen *idemSeen) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Authenticate(), IdempotencyValidator(opts, lookup))
	h := func(c *gin.Context) {
		seen.key, _ = GetIdempotencyKey(c)
		seen.replay = IsReplay(c)
		seen.bypass = IsRateBypass(c)
		c.Status(http.StatusNoContent)
	}
	r.POST("/api/polls", h)
	r.GET("/api/polls", h)
	return r
}

func idemRequest(method, key, user string) *http.Request {
	req := httptest.NewRequest(method, "/api/polls", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	if user != "" {
		req.Header.Set(HeaderUserID, user)
		req.Header.Set(HeaderUserRole, "admin")
	}
	return req
}

func TestIdempotencyValidator_ReplayDetected(t *testing.T) {
	var calls []lookupCall
	lookup := func(_ context.Context, userID, scope, key string, _ time.Time) (bool, error) {
		calls = append(calls, lookupCall{userID, scope, key})
		return key == "seen", nil
	}
	var seen idemSeen
	r := idemRouter(t, IdempotencyOptions{}, lookup, &seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, idemRequest(http.MethodPost, "seen", "a1"))
	if w.Code != http.StatusNoContent || seen.key != "seen" || !seen.replay || !seen.bypass {
		t.Fatalf("expected replay flags, got %+v (status %d)", seen, w.Code)
	}
	if len(calls) != 1 || calls[0] != (lookupCall{"a1", "POST /api/polls", "seen"}) {
		t.Fatalf("unexpected lookup calls: %+v", calls)
	}

	r.ServeHTTP(httptest.NewRecorder(), idemRequest(http.MethodPost, "fresh", "a1"))
	if seen.key != "fresh" || seen.replay || seen.bypass {
		t.Fatalf("fresh key must not be a replay: %+v", seen)
	}
}

func TestIdempotencyValidator_SkipsLookup(t *testing.T) {
	called := 0
	lookup := func(context.Context, string, string, string, time.Time) (bool, error) {
		called++
		return true, nil
	}
	var seen idemSeen
	r := idemRouter(t, IdempotencyOptions{}, lookup, &seen)

	// No header.
	r.ServeHTTP(httptest.NewRecorder(), idemRequest(http.MethodPost, "", "a1"))
	// Safe method.
	r.ServeHTTP(httptest.NewRecorder(), idemRequest(http.MethodGet, "k", "a1"))
	if seen.key != "" {
		t.Fatalf("safe methods must ignore the header, got key %q", seen.key)
	}
	// Anonymous caller: key stashed, no lookup.
	r.ServeHTTP(httptest.NewRecorder(), idemRequest(http.MethodPost, "k", ""))
	if seen.key != "k" || seen.replay {
		t.Fatalf("anonymous request: %+v", seen)
	}
	if called != 0 {
		t.Fatalf("lookup should not run, ran %d times", called)
	}
}

func TestIdempotencyValidator_CustomScopeAndLookupError(t *testing.T) {
	var scopes []string
	lookup := func(_ context.Context, _, scope, _ string, _ time.Time) (bool, error) {
		scopes = append(scopes, scope)
		return false, errors.New("db down")
	}
	var seen idemSeen
	opts := IdempotencyOptions{Scope: func(c *gin.Context) string {
		if c.FullPath() == "/api/polls" {
			return "polls:create"
		}
		return ""
	}}
	r := idemRouter(t, opts, lookup, &seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, idemRequest(http.MethodPost, "k", "a1"))
	if w.Code != http.StatusNoContent || seen.replay {
		t.Fatalf("lookup errors must not block or mark replay: %d %+v", w.Code, seen)
	}
	if len(scopes) != 1 || scopes[0] != "polls:create" {
		t.Fatalf("custom scope not used: %v", scopes)
	}
}

func TestIdempotencyValidator_InvalidKeys(t *testing.T) {
	var seen idemSeen
	opts := IdempotencyOptions{MaxLen: 8, Pattern: regexp.MustCompile(`^[a-z]+$`)}
	r := idemRouter(t, opts, nil, &seen)

	for _, key := range []string{strings.Repeat("a", 9), "ABC", "a b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, idemRequest(http.MethodPost, key, "a1"))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q: status = %d", key, w.Code)
		}
		var body map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["code"] != "bad_idempotency_key" || body["request_id"] == "" {
			t.Fatalf("key %q: body = %v", key, body)
		}
	}
}

func TestIdempotencyHelpers_WrongTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected no key")
	}
	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must read as absent")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-bool replay flag must read as false")
	}
}
