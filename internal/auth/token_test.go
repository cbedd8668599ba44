package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techtimeoff/leave-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)

	token, exp, err := tm.GenerateToken("user-1", domain.RoleCoordinator)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleCoordinator, claims.Role)
}

func TestTokenIsDeterministicForFixedClock(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tm := NewTokenManager("test-secret", 60).WithClock(func() time.Time { return fixed })

	first, _, err := tm.GenerateToken("user-1", domain.RoleFaculty)
	require.NoError(t, err)
	second, _, err := tm.GenerateToken("user-1", domain.RoleFaculty)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTokenRejectsSingleCharacterTampering(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	token, _, err := tm.GenerateToken("user-1", domain.RoleFaculty)
	require.NoError(t, err)

	segments := strings.Split(token, ".")
	require.Len(t, segments, 3)

	offset := 0
	for _, segment := range segments {
		// The final character of an unpadded base64 segment may carry only padding bits.
		for i := 0; i < len(segment)-1; i++ {
			pos := offset + i
			replacement := byte('A')
			if token[pos] == 'A' {
				replacement = 'B'
			}
			tampered := token[:pos] + string(replacement) + token[pos+1:]
			_, err := tm.ParseToken(tampered)
			assert.ErrorIs(t, err, ErrInvalidToken, "position %d", pos)
		}
		offset += len(segment) + 1
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := NewTokenManager("test-secret", 60).WithClock(func() time.Time { return issued })
	token, _, err := tm.GenerateToken("user-1", domain.RoleFaculty)
	require.NoError(t, err)

	later := tm.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = later.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	within := tm.WithClock(func() time.Time { return issued.Add(30 * time.Minute) })
	_, err = within.ParseToken(token)
	assert.NoError(t, err)
}

func TestTokenRejectsOtherSecretAndGarbage(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).GenerateToken("user-1", domain.RolePrincipal)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	for _, garbage := range []string{"", "abc", "a.b.c", token + "x"} {
		_, err = NewTokenManager("secret-a", 60).ParseToken(garbage)
		assert.ErrorIs(t, err, ErrInvalidToken, garbage)
	}
}

func TestTokenRejectsUnknownRole(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	token, _, err := tm.GenerateToken("user-1", domain.Role("janitor"))
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
