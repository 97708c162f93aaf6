package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatalf("password stored in plaintext")
	}
	if err := CheckPassword(hash, "s3cret-password"); err != nil {
		t.Fatalf("CheckPassword rejected correct password: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("CheckPassword accepted wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	token, err := GenerateToken(secret, Claims{
		UserID: "u-1",
		Email:  "jane@example.com",
		Role:   "TeamLead",
		Name:   "Jane Doe",
	}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "jane@example.com" || claims.Role != "TeamLead" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "u-1"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatalf("expected signature verification failure")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	a := HashToken("opaque-session-token")
	b := HashToken("opaque-session-token")
	if a != b {
		t.Fatalf("HashToken not deterministic")
	}
	if a == "opaque-session-token" {
		t.Fatalf("token stored unhashed")
	}
}
