package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-repair-pos/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)
	tok, err := iss.GenerateToken(models.User{ID: "u1", Username: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)

	claims, err := iss.ValidateToken(tok)
	require.NoError(t, err)
	require.Equal(t, models.Session{UserID: "u1", Username: "admin", Role: models.RoleAdmin}, claims.Session())
}

func TestTokenRejectsOtherKeyAndExpiry(t *testing.T) {
	iss := NewIssuer("one", time.Hour)
	tok, err := iss.GenerateToken(models.User{ID: "u1", Role: models.RoleStaff})
	require.NoError(t, err)

	_, err = NewIssuer("two", time.Hour).ValidateToken(tok)
	require.Error(t, err)

	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = iss.ValidateToken(tok)
	require.Error(t, err)
}

func TestPasswords(t *testing.T) {
	hashed, err := HashPassword("admin123")
	require.NoError(t, err)
	require.True(t, IsHashed(hashed))
	require.True(t, CheckPassword(hashed, "admin123"))
	require.False(t, CheckPassword(hashed, "admin124"))

	require.True(t, CheckPassword("staff123", "staff123"))
	require.False(t, CheckPassword("staff123", "staff"))
}
