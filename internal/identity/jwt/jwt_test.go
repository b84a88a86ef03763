package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T, now *time.Time) *Issuer {
	t.Helper()

	issuer, err := NewIssuer(Config{
		SecretKey:           "test-secret-key",
		Algorithm:           "HS256",
		AccessTokenDuration: 30 * time.Minute,
	})
	require.NoError(t, err)
	issuer.now = func() time.Time { return *now }
	return issuer
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	now := time.Date(2025, 11, 9, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, &now)

	token, err := issuer.Issue(Claims{"sub": "a@example.com", "scope": "app"}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", claims.Subject())
	assert.Equal(t, "app", claims["scope"])
	assert.EqualValues(t, now.Add(30*time.Minute).Unix(), claims["exp"])
}

func TestIssuer_VerifyExpiresAfterDefaultTTL(t *testing.T) {
	now := time.Date(2025, 11, 9, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, &now)

	token, err := issuer.IssueAccessToken("a@example.com")
	require.NoError(t, err)

	now = now.Add(29*time.Minute + 59*time.Second)
	_, err = issuer.Verify(token)
	require.NoError(t, err, "token must be valid before ttl elapses")

	now = now.Add(time.Second)
	claims, err := issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestIssuer_VerifyExpiresAfterExplicitTTL(t *testing.T) {
	now := time.Date(2025, 11, 9, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, &now)

	token, err := issuer.Issue(Claims{"sub": "a@example.com"}, 5*time.Second)
	require.NoError(t, err)

	now = now.Add(4 * time.Second)
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_VerifyRejectsTamperedTokens(t *testing.T) {
	now := time.Date(2025, 11, 9, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, &now)

	token, err := issuer.IssueAccessToken("a@example.com")
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		claims, err := issuer.Verify(tampered)
		assert.ErrorIs(t, err, ErrInvalidToken, "byte %d", i)
		assert.Nil(t, claims, "byte %d", i)
	}
}

func TestIssuer_VerifyRejectsForeignTokens(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(t, &now)
	exp := jwtlib.NewNumericDate(now.Add(time.Hour))

	otherKey, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "a@example.com", "exp": exp,
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	otherAlg, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, jwtlib.MapClaims{
		"sub": "a@example.com", "exp": exp,
	}).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	noneAlg, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{
		"sub": "a@example.com", "exp": exp,
	}).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "a@example.com",
	}).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong key":       otherKey,
		"wrong algorithm": otherAlg,
		"none algorithm":  noneAlg,
		"missing exp":     noExpiry,
		"empty":           "",
		"garbage":         "invalid_token_here",
		"two segments":    "a.b",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := issuer.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestIssuer_IssueRequiresSubject(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(t, &now)

	_, err := issuer.Issue(Claims{"scope": "app"}, 0)
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, err = issuer.Issue(Claims{"sub": 42}, 0)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestNewIssuer_Config(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		wantAlg string
	}{
		{"defaults algorithm", Config{SecretKey: "k", AccessTokenDuration: time.Minute}, false, "HS256"},
		{"hs512", Config{SecretKey: "k", Algorithm: "HS512", AccessTokenDuration: time.Minute}, false, "HS512"},
		{"missing secret", Config{AccessTokenDuration: time.Minute}, true, ""},
		{"asymmetric algorithm", Config{SecretKey: "k", Algorithm: "RS256", AccessTokenDuration: time.Minute}, true, ""},
		{"unknown algorithm", Config{SecretKey: "k", Algorithm: "XX1", AccessTokenDuration: time.Minute}, true, ""},
		{"zero duration", Config{SecretKey: "k"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer, err := NewIssuer(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, issuer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAlg, issuer.Algorithm())
		})
	}
}
