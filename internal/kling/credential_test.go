package kling

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewIssuerRequiresKeys(t *testing.T) {
	if _, err := NewIssuer(IssuerOptions{SecretKey: "sk"}); err == nil {
		t.Fatalf("expected error for missing access key")
	}
	if _, err := NewIssuer(IssuerOptions{AccessKey: "ak"}); err == nil {
		t.Fatalf("expected error for missing secret key")
	}
	if _, err := NewIssuer(IssuerOptions{AccessKey: "  ", SecretKey: "sk"}); err == nil {
		t.Fatalf("expected error for blank access key")
	}
}

func TestIssueSignsExpectedClaims(t *testing.T) {
	now := time.Unix(1700000000, 0)
	issuer, err := NewIssuer(IssuerOptions{
		AccessKey: "ak-123",
		SecretKey: "sk-456",
		Now:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewIssuer returned error: %v", err)
	}

	cred, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if cred.Token == "" {
		t.Fatalf("expected non-empty token")
	}
	if want := now.Add(30 * time.Minute); !cred.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", cred.ExpiresAt, want)
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(cred.Token, &claims, func(token *jwt.Token) (any, error) {
		return []byte("sk-456"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !parsed.Valid {
		t.Fatalf("token not valid")
	}
	if claims.Issuer != "ak-123" {
		t.Fatalf("iss = %q, want ak-123", claims.Issuer)
	}
	if want := now.Add(30 * time.Minute); !claims.ExpiresAt.Time.Equal(want) {
		t.Fatalf("exp = %v, want %v", claims.ExpiresAt.Time, want)
	}
	if want := now.Add(-5 * time.Second); !claims.NotBefore.Time.Equal(want) {
		t.Fatalf("nbf = %v, want %v", claims.NotBefore.Time, want)
	}
}

func TestIssueHonorsCustomTTL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	issuer, err := NewIssuer(IssuerOptions{
		AccessKey: "ak",
		SecretKey: "sk",
		TTL:       time.Minute,
		Now:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewIssuer returned error: %v", err)
	}
	cred, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if want := now.Add(time.Minute); !cred.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", cred.ExpiresAt, want)
	}
}

func TestIssueRejectsExpiredWindowOnParse(t *testing.T) {
	issued := time.Unix(1700000000, 0)
	issuer, err := NewIssuer(IssuerOptions{
		AccessKey: "ak",
		SecretKey: "sk",
		Now:       func() time.Time { return issued },
	})
	if err != nil {
		t.Fatalf("NewIssuer returned error: %v", err)
	}
	cred, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	// The validity window is enforced by the consumer of the token, which is
	// what a verifier at T + TTL observes.
	after := issued.Add(30*time.Minute + time.Second)
	_, err = jwt.Parse(cred.Token, func(token *jwt.Token) (any, error) {
		return []byte("sk"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return after }))
	if err == nil {
		t.Fatalf("expected expired-token error")
	}
}
