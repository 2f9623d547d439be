package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testKeyID  = "test-key-jb"
	testIssuer = "https://idp.test/realms/jira-bridge"
)

func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

// buildJWKSetJSON строит JWKS JSON из RSA публичного ключа.
func buildJWKSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	}
	data, _ := json.Marshal(jwks)
	return data
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestJWTAuth(t *testing.T, key *rsa.PrivateKey) *JWTAuth {
	t.Helper()
	kf, err := keyfunc.NewJWKSetJSON(buildJWKSetJSON(&key.PublicKey, testKeyID))
	if err != nil {
		t.Fatalf("не удалось создать keyfunc: %v", err)
	}
	return NewJWTAuthWithKeyfunc(kf, testIssuer, 5*time.Second, testLogger())
}

func generateToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":                "user-1",
		"preferred_username": "alice",
		"email":              "alice@example.com",
		"iss":                testIssuer,
		"exp":                jwt.NewNumericDate(time.Now().Add(time.Hour)),
		"iat":                jwt.NewNumericDate(time.Now()),
	}
}

func TestJWTAuth_ValidToken(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key)

	var got *AuthClaims
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/projects/conn-1", nil)
	req.Header.Set("Authorization", "Bearer "+generateToken(t, key, validClaims()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}
	if got == nil {
		t.Fatal("claims не найдены в контексте")
	}
	if got.Subject != "user-1" || got.PreferredUsername != "alice" || got.Email != "alice@example.com" {
		t.Errorf("claims = %+v", got)
	}
}

func TestJWTAuth_Rejected(t *testing.T) {
	key := generateTestKey(t)
	otherKey := generateTestKey(t)
	auth := newTestJWTAuth(t, key)

	expired := validClaims()
	expired["exp"] = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "https://evil.test"
	noSub := validClaims()
	delete(noSub, "sub")
	noExp := validClaims()
	delete(noExp, "exp")

	tests := []struct {
		name   string
		header string
	}{
		{name: "нет заголовка", header: ""},
		{name: "не Bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "пустой токен", header: "Bearer "},
		{name: "мусор", header: "Bearer not-a-jwt"},
		{name: "просрочен", header: "Bearer " + generateToken(t, key, expired)},
		{name: "чужой issuer", header: "Bearer " + generateToken(t, key, wrongIssuer)},
		{name: "без sub", header: "Bearer " + generateToken(t, key, noSub)},
		{name: "без exp", header: "Bearer " + generateToken(t, key, noExp)},
		{name: "чужой ключ", header: "Bearer " + generateToken(t, otherKey, validClaims())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				t.Error("handler не должен вызываться")
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/projects/conn-1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("статус = %d, ожидался 401", rec.Code)
			}
		})
	}
}

// TestJWTAuth_Preflight проверяет, что OPTIONS проходит без токена.
func TestJWTAuth_Preflight(t *testing.T) {
	auth := newTestJWTAuth(t, generateTestKey(t))

	called := false
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/connection", nil))

	if !called {
		t.Error("preflight должен пройти без токена")
	}
}

func TestSubjectFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := SubjectFromContext(req.Context()); got != "" {
		t.Errorf("SubjectFromContext = %q, ожидалась пустая строка", got)
	}
}
