package license

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidLicense is returned for malformed, expired or
	// wrongly-signed license tokens
	ErrInvalidLicense = errors.New("invalid or expired license")
	// ErrMachineMismatch is returned when the license is bound to a
	// different machine
	ErrMachineMismatch = errors.New("license issued for a different machine")
)

// MachineIdentity is the persistent identity of this installation. The
// remote auth service binds licenses to MachineID; the file survives
// restarts so the binding is stable.
type MachineIdentity struct {
	MachineID string `json:"machine_id"`
	CreatedAt string `json:"created_at"`
}

// LoadOrGenerateIdentity reads the identity file or creates a new one
func LoadOrGenerateIdentity(path string) (*MachineIdentity, error) {
	if data, err := os.ReadFile(path); err == nil {
		var identity MachineIdentity
		if err := json.Unmarshal(data, &identity); err == nil && identity.MachineID != "" {
			return &identity, nil
		}
	}

	identity := &MachineIdentity{
		MachineID: uuid.New().String(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create identity dir: %w", err)
	}
	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to persist identity: %w", err)
	}
	return identity, nil
}

// Claims carried by a license token issued by the remote auth service
type Claims struct {
	RestaurantID string `json:"restaurant_id"`
	MachineID    string `json:"machine_id"`
	jwt.RegisteredClaims
}

// Validator checks license tokens locally. Issuance stays on the remote
// side; the core only gates write operations on a valid binding.
type Validator struct {
	secret    string
	machineID string
}

// NewValidator creates a license validator bound to this machine
func NewValidator(secret, machineID string) *Validator {
	return &Validator{secret: secret, machineID: machineID}
}

// Validate parses a license token and checks signature, expiry and the
// machine binding.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidLicense
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidLicense
	}
	if claims.MachineID != v.machineID {
		return nil, ErrMachineMismatch
	}
	return claims, nil
}
