package jwt

import (
	"testing"
	"time"

	"farmxchain/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndReadToken(t *testing.T) {
	svc := NewJWTServiceWithSecret("secret")
	token := svc.GenerateTokenUser(domain.User{ID: 7, Email: "r@example.com", Role: "Retailer"}, "upstream-token")

	id, role, err := svc.GetUserIDByToken(token)
	require.NoError(t, err)
	assert.Equal(t, "7", id)
	assert.Equal(t, domain.RoleRetailer, role)

	claims, err := svc.GetClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "upstream-token", claims.Upstream)
	assert.Equal(t, "r@example.com", claims.Email)
}

func TestGetClaims_Rejections(t *testing.T) {
	svc := NewJWTServiceWithSecret("secret")

	other := NewJWTServiceWithSecret("other").GenerateTokenUser(domain.User{ID: 1, Role: "customer"}, "")
	_, err := svc.GetClaims(other)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID: "1",
		Role:   "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.GetClaims(signed)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)

	_, _, err = svc.GetUserIDByToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
