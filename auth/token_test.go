package auth

import (
	"testing"
	"time"

	"notify-lab/domain"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-long-enough-for-hs256!!"

func TestToken_GenerateAndValidate(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager(testSecret, time.Hour)

	// Given a freshly minted token for user 42
	token, err := manager.Generate(42)
	req.NoError(err)
	req.NotEmpty(token)

	// When it is validated with the same secret
	claims, err := manager.Validate(token)

	// Then the identity round-trips
	req.NoError(err)
	req.Equal(domain.UserID(42), claims.UserID)
	req.Equal("notify-lab", claims.Issuer)
}

func TestToken_RejectsExpired(t *testing.T) {
	req := require.New(t)

	// Given a token that expired an hour ago
	manager := NewTokenManager(testSecret, -time.Hour)
	token, err := manager.Generate(42)
	req.NoError(err)

	// Then validation fails
	_, err = manager.Validate(token)
	req.Error(err)
}

func TestToken_RejectsWrongSecret(t *testing.T) {
	req := require.New(t)

	issuer := NewTokenManager(testSecret, time.Hour)
	verifier := NewTokenManager("another-secret-entirely-different!!", time.Hour)

	token, err := issuer.Generate(42)
	req.NoError(err)

	// Then a token signed with another secret is refused
	_, err = verifier.Validate(token)
	req.Error(err)
}

func TestToken_RejectsGarbage(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager(testSecret, time.Hour)

	_, err := manager.Validate("definitely.not.a-jwt")
	req.Error(err)
}
