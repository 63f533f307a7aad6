package license

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func issueToken(t *testing.T, secret, restaurantID, machineID string, expiresIn time.Duration) string {
	t.Helper()
	claims := Claims{
		RestaurantID: restaurantID,
		MachineID:    machineID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateAcceptsBoundToken(t *testing.T) {
	v := NewValidator(testSecret, "machine-1")
	token := issueToken(t, testSecret, "rest-1", "machine-1", time.Hour)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "rest-1", claims.RestaurantID)
	assert.Equal(t, "machine-1", claims.MachineID)
}

func TestValidateRejectsOtherMachine(t *testing.T) {
	v := NewValidator(testSecret, "machine-1")
	token := issueToken(t, testSecret, "rest-1", "machine-2", time.Hour)

	_, err := v.Validate(token)
	assert.ErrorIs(t, err, ErrMachineMismatch)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	v := NewValidator(testSecret, "machine-1")
	token := issueToken(t, testSecret, "rest-1", "machine-1", -time.Minute)

	_, err := v.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidLicense)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	v := NewValidator(testSecret, "machine-1")
	token := issueToken(t, "other-secret", "rest-1", "machine-1", time.Hour)

	_, err := v.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidLicense)
}

func TestValidateRejectsGarbage(t *testing.T) {
	v := NewValidator(testSecret, "machine-1")

	_, err := v.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidLicense)
}

func TestIdentityIsStableAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")

	first, err := LoadOrGenerateIdentity(path)
	require.NoError(t, err)
	require.NotEmpty(t, first.MachineID)

	second, err := LoadOrGenerateIdentity(path)
	require.NoError(t, err)
	assert.Equal(t, first.MachineID, second.MachineID)
}
