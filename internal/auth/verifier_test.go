package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestStaticVerifier(t *testing.T) {
	v := StaticVerifier{}
	identity, err := v.Verify(context.Background(), "u123")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if identity.UserID != "u123" {
		t.Fatalf("user id = %s", identity.UserID)
	}
	if _, err := v.Verify(context.Background(), ""); err == nil {
		t.Fatal("empty token should fail")
	}
}

// jwksServer serves a single-key JWKS for the given RSA key.
func jwksServer(t *testing.T, key *rsa.PrivateKey, kid string) *httptest.Server {
	t.Helper()
	doc := map[string]any{
		"keys": []map[string]string{{
			"kid": kid,
			"kty": "RSA",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestJWKSVerifierRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	srv := jwksServer(t, key, "key-1")
	v := NewJWKSVerifier(srv.URL, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":      "user-42",
		"username": "Ragnar",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "key-1"
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}

	identity, err := v.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if identity.UserID != "user-42" || identity.Username != "Ragnar" {
		t.Fatalf("identity = %+v", identity)
	}
}

func TestJWKSVerifierRejectsBadTokens(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	srv := jwksServer(t, key, "key-1")
	v := NewJWKSVerifier(srv.URL, nil)

	if _, err := v.Verify(context.Background(), ""); err == nil {
		t.Fatal("empty token should fail")
	}
	if _, err := v.Verify(context.Background(), "not.a.jwt"); err == nil {
		t.Fatal("garbage token should fail")
	}

	// Expired token.
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	token.Header["kid"] = "key-1"
	signed, _ := token.SignedString(key)
	if _, err := v.Verify(context.Background(), signed); err == nil {
		t.Fatal("expired token should fail")
	}

	// Token signed by a different key.
	otherKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	token = jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "key-1"
	signed, _ = token.SignedString(otherKey)
	if _, err := v.Verify(context.Background(), signed); err == nil {
		t.Fatal("wrong-key token should fail")
	}
}
