package service

import (
	"errors"
	"testing"
	"time"
)

func TestAdminJWTRoundTrip(t *testing.T) {
	token, expiresAt, err := GenerateAdminJWT("secret", "roofdash", 7, "ops", time.Hour)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expires at should be in the future, got %s", expiresAt)
	}
	claims, err := ParseAdminJWT("secret", "roofdash", token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != 7 || claims.Username != "ops" {
		t.Fatalf("claims want 7/ops got %d/%s", claims.AdminID, claims.Username)
	}
}

func TestParseAdminJWTRejects(t *testing.T) {
	token, _, err := GenerateAdminJWT("secret", "roofdash", 7, "ops", time.Hour)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := ParseAdminJWT("other", "", token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong secret want ErrTokenInvalid got %v", err)
	}
	if _, err := ParseAdminJWT("secret", "someone-else", token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong issuer want ErrTokenInvalid got %v", err)
	}
	if _, err := ParseAdminJWT("", "", token); !errors.Is(err, ErrTokenSecretMissing) {
		t.Fatalf("empty secret want ErrTokenSecretMissing got %v", err)
	}

	expired, _, err := GenerateAdminJWT("secret", "", 7, "ops", -time.Minute)
	if err != nil {
		t.Fatalf("generate expired token failed: %v", err)
	}
	if _, err := ParseAdminJWT("secret", "", expired); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired token want ErrTokenInvalid got %v", err)
	}

	anonymous, _, err := GenerateAdminJWT("secret", "", 0, "ghost", time.Hour)
	if err != nil {
		t.Fatalf("generate anonymous token failed: %v", err)
	}
	if _, err := ParseAdminJWT("secret", "", anonymous); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("admin id 0 want ErrTokenInvalid got %v", err)
	}
}
