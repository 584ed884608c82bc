package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dibyam12/SMS-backend/internal/auth"
	"github.com/dibyam12/SMS-backend/internal/config"
	"github.com/dibyam12/SMS-backend/internal/ratelimit"
	"github.com/dibyam12/SMS-backend/internal/service"
	"github.com/dibyam12/SMS-backend/internal/service/servicetest"
	"github.com/dibyam12/SMS-backend/internal/session"
)

func newTestRouter(t *testing.T, loginMax int) http.Handler {
	t.Helper()
	issuer := auth.NewIssuer("a-secret", "r-secret", "test", 15*time.Minute, 7*24*time.Hour)
	authSvc := service.NewAuth(servicetest.NewFakeUsers(), servicetest.NewMemSessions(), issuer, nil)
	limiter := ratelimit.New(nil, 15*time.Minute, loginMax)
	server := NewServer(config.Config{}, nil, authSvc, issuer, limiter, nil)
	return server.Router()
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerBody() map[string]interface{} {
	return map[string]interface{}{
		"email":      "jane@example.com",
		"username":   "jane",
		"password":   "pass1234",
		"first_name": "Jane",
		"last_name":  "Doe",
		"role":       "teacher",
		"is_staff":   true,
	}
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t, 10)

	rec := postJSON(t, router, "/user/register", registerBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = postJSON(t, router, "/user/login", map[string]string{"username": "jane", "password": "pass1234"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", rec.Code, rec.Body)
	}
	var pair tokenPairResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
		t.Fatal(err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("empty token pair")
	}

	rec = postJSON(t, router, "/user/refresh-token", map[string]string{"refresh_token": pair.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d, body = %s", rec.Code, rec.Body)
	}
	var rotated tokenPairResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &rotated); err != nil {
		t.Fatal(err)
	}

	// The spent refresh token is rejected.
	rec = postJSON(t, router, "/user/refresh-token", map[string]string{"refresh_token": pair.RefreshToken})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("spent refresh: status = %d, want 403", rec.Code)
	}

	// Logout, then the rotated token dies too.
	rec = postJSON(t, router, "/user/logout", map[string]string{"refresh_token": rotated.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}
	rec = postJSON(t, router, "/user/refresh-token", map[string]string{"refresh_token": rotated.RefreshToken})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("refresh after logout: status = %d, want 403", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := newTestRouter(t, 10)

	postJSON(t, router, "/user/register", registerBody())

	rec := postJSON(t, router, "/user/login", map[string]string{"username": "jane", "password": "wrong"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong password: status = %d, want 400", rec.Code)
	}
	rec = postJSON(t, router, "/user/login", map[string]string{"username": "nobody", "password": "pass1234"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown user: status = %d, want 400", rec.Code)
	}
}

func TestRegisterRejectsDuplicatesAndUnknownFields(t *testing.T) {
	router := newTestRouter(t, 10)

	postJSON(t, router, "/user/register", registerBody())

	rec := postJSON(t, router, "/user/register", registerBody())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: status = %d, want 400", rec.Code)
	}

	body := registerBody()
	body["surprise"] = true
	rec = postJSON(t, router, "/user/register", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: status = %d, want 400", rec.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	router := newTestRouter(t, 3)

	postJSON(t, router, "/user/register", registerBody())

	// Failed attempts count too: the limiter sits in front of the handler.
	for i := 0; i < 3; i++ {
		rec := postJSON(t, router, "/user/login", map[string]string{"username": "jane", "password": "wrong"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("attempt %d: status = %d", i+1, rec.Code)
		}
	}
	rec := postJSON(t, router, "/user/login", map[string]string{"username": "jane", "password": "pass1234"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over budget: status = %d, want 429", rec.Code)
	}
}

func TestRefreshTokenEdgeCases(t *testing.T) {
	router := newTestRouter(t, 10)

	rec := postJSON(t, router, "/user/refresh-token", map[string]string{"refresh_token": ""})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d, want 401", rec.Code)
	}

	rec = postJSON(t, router, "/user/refresh-token", map[string]string{"refresh_token": "garbage"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("garbage token: status = %d, want 403", rec.Code)
	}
}

func TestRefreshDisabledReturns503(t *testing.T) {
	issuer := auth.NewIssuer("a-secret", "r-secret", "test", 15*time.Minute, 7*24*time.Hour)
	authSvc := service.NewAuth(servicetest.NewFakeUsers(), session.Disabled(), issuer, nil)
	limiter := ratelimit.New(nil, 15*time.Minute, 10)
	router := NewServer(config.Config{}, nil, authSvc, issuer, limiter, nil).Router()

	postJSON(t, router, "/user/register", registerBody())
	rec := postJSON(t, router, "/user/login", map[string]string{"username": "jane", "password": "pass1234"})
	var pair tokenPairResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
		t.Fatal(err)
	}

	rec = postJSON(t, router, "/user/refresh-token", map[string]string{"refresh_token": pair.RefreshToken})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestProtectedEndpointsRequireBearer(t *testing.T) {
	router := newTestRouter(t, 10)

	req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/user/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/user/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer scheme: status = %d, want 401", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer abc":  "abc",
		"Bearer  abc": "abc",
		"":            "",
		"abc":         "",
		"Basic abc":   "",
	}
	for header, want := range cases {
		if got := bearerToken(header); got != want {
			t.Errorf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	if got := clientIP(req); got != "10.1.2.3" {
		t.Errorf("remote addr: %q", got)
	}

	req.Header.Set("X-Real-IP", "203.0.113.9")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("x-real-ip: %q", got)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := clientIP(req); got != "198.51.100.7" {
		t.Errorf("x-forwarded-for: %q", got)
	}
}
