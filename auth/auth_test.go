// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name       string
		byteLen    int
		wantHexLen int
	}{
		{"8 bytes", 8, 16},
		{"12 bytes", 12, 24},
		{"16 bytes", 16, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID failed: %v", err)
			}
			if len(id) != tt.wantHexLen {
				t.Errorf("Expected length %d, got %d", tt.wantHexLen, len(id))
			}
		})
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, _ := GenerateID(16)
		if seen[id] {
			t.Errorf("Duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("Password stored in plain text")
	}

	if err := CheckPassword(hash, "correct horse"); err != nil {
		t.Errorf("Expected password to match: %v", err)
	}
	if err := CheckPassword(hash, "wrong horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("Expected ErrPasswordTooShort, got %v", err)
	}
}

func TestIssueAndParseToken(t *testing.T) {
	now := time.Now()
	token, expires, err := IssueToken("user-1", "admin", "secret", time.Hour, now)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if !expires.Equal(now.Add(time.Hour)) {
		t.Errorf("Unexpected expiry %v", expires)
	}

	session, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if session.UserID != "user-1" || session.Role != "admin" {
		t.Errorf("Unexpected session %+v", session)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	valid, _, _ := IssueToken("user-1", "voter", "secret", time.Hour, time.Now())
	expired, _, _ := IssueToken("user-1", "voter", "secret", time.Hour, time.Now().Add(-2*time.Hour))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "other"},
		{"expired", expired, "secret"},
		{"garbage", "not-a-token", "secret"},
		{"alg none", unsigned, "secret"},
		{"empty", "", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, tt.secret); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	salt := "test-salt"

	hash1 := HashIP("192.168.1.1", salt)
	hash2 := HashIP("192.168.1.1", salt)
	if hash1 != hash2 {
		t.Error("HashIP should be deterministic")
	}
	if len(hash1) != 16 {
		t.Errorf("Expected 16 hex chars, got %d", len(hash1))
	}
	if HashIP("192.168.1.2", salt) == hash1 {
		t.Error("Different IPs should hash differently")
	}
	if HashIP("192.168.1.1", "other-salt") == hash1 {
		t.Error("Different salts should hash differently")
	}
}
