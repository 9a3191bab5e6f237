package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventrio/internal/domain"
)

func TestJWT_IssueVerify(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	c := parsed.Claims.(*claims)
	assert.Equal(t, "u@example.com", c.Email)
	assert.Equal(t, "eventrio", c.Issuer)

	userID, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestJWT_VerifyRejects(t *testing.T) {
	j := NewJWT("test-secret")
	expired, err := j.Issue("user-1", "a@b.com", -time.Minute)
	require.NoError(t, err)
	foreign, err := NewJWT("other-secret").Issue("user-1", "a@b.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong secret", token: foreign},
		{name: "garbage", token: "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Verify(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
