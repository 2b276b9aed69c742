package kling

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenTTL      = 30 * time.Minute
	defaultNotBeforeSkew = 5 * time.Second
)

// Credential is a short-lived signed token authorizing calls to the Kling API.
// Expiry is enforced by the remote service, not locally.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// TokenSource mints a currently-valid credential on demand.
type TokenSource interface {
	Issue() (Credential, error)
}

// IssuerOptions configures a credential issuer.
type IssuerOptions struct {
	AccessKey string
	SecretKey string
	// TTL is the credential validity window; defaults to 30 minutes.
	TTL time.Duration
	// NotBeforeSkew backdates the nbf claim to tolerate clock drift; defaults to 5 seconds.
	NotBeforeSkew time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Issuer mints HS256-signed bearer tokens for the Kling API. Credentials are
// not cached: a fresh one is minted per call.
type Issuer struct {
	accessKey string
	secretKey string
	ttl       time.Duration
	skew      time.Duration
	now       func() time.Time
}

// NewIssuer validates the signing material once at construction so a missing
// secret fails at startup rather than on the first submission.
func NewIssuer(opts IssuerOptions) (*Issuer, error) {
	accessKey := strings.TrimSpace(opts.AccessKey)
	if accessKey == "" {
		return nil, errors.New("kling: access key is required")
	}
	secretKey := strings.TrimSpace(opts.SecretKey)
	if secretKey == "" {
		return nil, errors.New("kling: secret key is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	skew := opts.NotBeforeSkew
	if skew <= 0 {
		skew = defaultNotBeforeSkew
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		accessKey: accessKey,
		secretKey: secretKey,
		ttl:       ttl,
		skew:      skew,
		now:       now,
	}, nil
}

// Issue mints a credential with the access key as issuer, expiring after the
// configured TTL and valid from slightly before the current instant.
func (i *Issuer) Issue() (Credential, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    i.accessKey,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now.Add(-i.skew)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.secretKey))
	if err != nil {
		return Credential{}, fmt.Errorf("kling: sign credential: %w", err)
	}
	return Credential{Token: strings.TrimSpace(signed), ExpiresAt: expiresAt}, nil
}

var _ TokenSource = (*Issuer)(nil)
