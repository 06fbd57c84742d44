package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func testIssuer(t *testing.T, alg string) *TokenIssuer {
	t.Helper()
	iss, err := NewTokenIssuer(JWTOptions{SecurityKey: testKey, Issuer: "https://courses.test", Audience: "courses-api", Algorithm: alg})
	require.NoError(t, err)
	return iss
}

func TestNewTokenIssuer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    JWTOptions
		wantErr error
	}{
		{"missing key", JWTOptions{}, ErrMissingSecurityKey},
		{"short key", JWTOptions{SecurityKey: "short"}, ErrWeakSecurityKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenIssuer(tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := NewTokenIssuer(JWTOptions{SecurityKey: testKey, Algorithm: "RS256"})
	assert.Error(t, err)
	_, err = NewTokenIssuer(JWTOptions{SecurityKey: testKey, Algorithm: "none"})
	assert.Error(t, err)
}

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	for _, alg := range []string{"", "HS256", "HS384", "HS512"} {
		t.Run("alg "+alg, func(t *testing.T) {
			iss := testIssuer(t, alg)
			now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
			iss.now = func() time.Time { return now }

			tok, exp, err := iss.Issue(Subject{ID: "u1", Email: "a@x.com", UserName: "alice", Kind: "regular"}, []string{"Student", "Admin"})
			require.NoError(t, err)
			assert.Equal(t, now.Add(2*time.Hour), exp)
			assert.Len(t, strings.Split(tok, "."), 3)

			claims, err := iss.Parse(tok)
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", claims.Email)
			assert.Equal(t, "alice", claims.UserName)
			assert.Equal(t, []string{"Student", "Admin"}, claims.Roles)
			assert.Equal(t, "u1", claims.Subject)
			assert.Equal(t, "https://courses.test", claims.Issuer)
			assert.Equal(t, jwt.ClaimStrings{"courses-api"}, claims.Audience)
			assert.NotEmpty(t, claims.ID)
		})
	}
}

func TestTokenIssuer_NoRoles(t *testing.T) {
	iss := testIssuer(t, "")
	tok, _, err := iss.Issue(Subject{ID: "u1", Email: "a@x.com"}, nil)
	require.NoError(t, err)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Empty(t, claims.Roles)
}

func TestTokenIssuer_FreshTokenEachCall(t *testing.T) {
	iss := testIssuer(t, "")
	a, _, err := iss.Issue(Subject{ID: "u1"}, nil)
	require.NoError(t, err)
	b, _, err := iss.Issue(Subject{ID: "u1"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenIssuer_ParseRejects(t *testing.T) {
	iss := testIssuer(t, "")
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return base }
	tok, _, err := iss.Issue(Subject{ID: "u1"}, nil)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := *iss
		later.now = func() time.Time { return base.Add(2*time.Hour + time.Minute) }
		_, err := later.Parse(tok)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("other audience", func(t *testing.T) {
		other, err := NewTokenIssuer(JWTOptions{SecurityKey: testKey, Issuer: "https://courses.test", Audience: "admin"})
		require.NoError(t, err)
		other.now = iss.now
		_, err = other.Parse(tok)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := NewTokenIssuer(JWTOptions{SecurityKey: strings.Repeat("k", 32), Issuer: "https://courses.test", Audience: "courses-api"})
		require.NoError(t, err)
		other.now = iss.now
		_, err = other.Parse(tok)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("other algorithm", func(t *testing.T) {
		other := testIssuer(t, "HS512")
		other.now = iss.now
		_, err := other.Parse(tok)
		assert.Error(t, err)
	})
}
