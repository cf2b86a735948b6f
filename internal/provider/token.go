package provider

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshMargin is how close to expiry a cached developer token may get
// before a fresh one is minted. The catalog API rejects tokens that expire
// mid-request, so the margin has to cover the slowest round trip.
const refreshMargin = 5 * time.Minute

// TokenManager mints and caches the ES256-signed developer token the music
// provider's catalog API requires on every request.
type TokenManager struct {
	partnerID string
	keyID     string
	key       *ecdsa.PrivateKey
	ttl       time.Duration

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// TokenManagerConfig holds configuration for creating a TokenManager.
type TokenManagerConfig struct {
	TeamID         string        // Partner account identifier, used as the issuer claim
	KeyID          string        // Signing key ID registered with the partner portal
	PrivateKeyPath string        // PKCS#8 PEM file holding the ECDSA signing key
	Expiry         time.Duration // Token TTL, 24h when zero
}

// NewTokenManager loads the signing key and returns a ready manager. All
// three identity fields are required; missing ones are reported together.
func NewTokenManager(cfg TokenManagerConfig) (*TokenManager, error) {
	var missing []string
	if cfg.TeamID == "" {
		missing = append(missing, "team ID")
	}
	if cfg.KeyID == "" {
		missing = append(missing, "key ID")
	}
	if cfg.PrivateKeyPath == "" {
		missing = append(missing, "private key path")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("token manager config missing %s", strings.Join(missing, ", "))
	}

	pemBytes, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	key, err := parseSigningKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key %s: %w", cfg.PrivateKeyPath, err)
	}

	ttl := cfg.Expiry
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	return &TokenManager{
		partnerID: cfg.TeamID,
		keyID:     cfg.KeyID,
		key:       key,
		ttl:       ttl,
	}, nil
}

// DeveloperToken returns a signed token, minting a replacement once the
// cached one is within the refresh margin of expiry.
func (tm *TokenManager) DeveloperToken() (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token != "" && time.Now().Add(refreshMargin).Before(tm.expiresAt) {
		return tm.token, nil
	}

	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tm.partnerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	unsigned.Header["kid"] = tm.keyID

	signed, err := unsigned.SignedString(tm.key)
	if err != nil {
		return "", fmt.Errorf("sign developer token: %w", err)
	}

	tm.token = signed
	tm.expiresAt = expiresAt
	return signed, nil
}

func parseSigningKey(pemBytes []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("not PEM encoded")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse PKCS#8 key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("ES256 needs an ECDSA key, got %T", parsed)
	}
	return key, nil
}
