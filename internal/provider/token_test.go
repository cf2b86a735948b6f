package provider

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func writeSigningKey(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "partner.p8")
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	require.NoError(t, os.WriteFile(path, pemBytes, 0o600))
	return path, key
}

func TestNewTokenManager_ReportsMissingFieldsTogether(t *testing.T) {
	_, err := NewTokenManager(TokenManagerConfig{PrivateKeyPath: "/tmp/partner.p8"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "team ID")
	require.Contains(t, err.Error(), "key ID")
}

func TestNewTokenManager_RejectsNonECDSAKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partner.p8")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0o600))

	_, err := NewTokenManager(TokenManagerConfig{
		TeamID:         "team-1",
		KeyID:          "key-1",
		PrivateKeyPath: path,
	})
	require.Error(t, err)
}

func TestDeveloperToken_SignsAndCaches(t *testing.T) {
	path, key := writeSigningKey(t)

	tokens, err := NewTokenManager(TokenManagerConfig{
		TeamID:         "team-1",
		KeyID:          "key-1",
		PrivateKeyPath: path,
		Expiry:         time.Hour,
	})
	require.NoError(t, err)

	signed, err := tokens.DeveloperToken()
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"ES256"}))
	require.NoError(t, err)
	require.Equal(t, "key-1", parsed.Header["kid"])

	issuer, err := parsed.Claims.GetIssuer()
	require.NoError(t, err)
	require.Equal(t, "team-1", issuer)

	// An hour-long token is nowhere near the refresh margin, so the second
	// call serves the cached string.
	again, err := tokens.DeveloperToken()
	require.NoError(t, err)
	require.Equal(t, signed, again)
}
