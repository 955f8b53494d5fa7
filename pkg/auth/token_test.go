package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseAdminToken(t *testing.T) {
	token, err := IssueAdminToken("s3cret", "ops", time.Minute)
	require.NoError(t, err)

	claims, err := ParseAdminToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "ops", claims.Subject)

	_, err = ParseAdminToken("other", token)
	assert.Error(t, err)

	_, err = IssueAdminToken("", "ops", time.Minute)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestParseAdminToken_Rejects(t *testing.T) {
	expired, err := IssueAdminToken("s3cret", "ops", -time.Minute)
	require.NoError(t, err)
	_, err = ParseAdminToken("s3cret", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	viewer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Role: "viewer"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = ParseAdminToken("s3cret", viewer)
	assert.ErrorIs(t, err, ErrNotAdmin)

	_, err = ParseAdminToken("s3cret", "not.a.token")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "Bearer ", "Basic abc", "abc.def"} {
		_, err := BearerToken(header)
		assert.ErrorIs(t, err, ErrNoToken, header)
	}
}
