package security

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shopcrew.com/shopcrew/core"
)

func TestValidateOwnerPIN(t *testing.T) {
	assert.NoError(t, ValidateOwnerPIN("174926"))

	for _, pin := range []string{"", "12345", "1234567", "12a456", "12 456", "１２３４５６"} {
		assert.Error(t, ValidateOwnerPIN(pin), "pin %q", pin)
	}
}

func TestOwnerPinWeakness(t *testing.T) {
	tests := []struct {
		pin      string
		category string
	}{
		{"000000", "default PIN"},
		{"111111", "all digits identical"},
		{"999999", "all digits identical"},
		{"123456", "ascending sequence"},
		{"456789", "ascending sequence"},
		{"901234", "ascending sequence"},
		{"654321", "descending sequence"},
		{"210987", "descending sequence"},
		{"121212", "repeating pattern"},
		{"123123", "repeating pattern"},
		{"787878", "repeating pattern"},
		{"174926", ""},
		{"305817", ""},
	}

	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			assert.Equal(t, tt.category, OwnerPinWeakness(tt.pin))
			assert.Equal(t, tt.category != "", IsWeakOwnerPIN(tt.pin))
		})
	}
}

func TestSetOwnerPIN(t *testing.T) {
	hash, err := SetOwnerPIN("174926")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("174926")))

	_, err = SetOwnerPIN("000000")
	assert.ErrorContains(t, err, "default PIN")

	_, err = SetOwnerPIN("12345")
	assert.ErrorContains(t, err, "exactly 6 digits")
}

type fakeShopDirectory struct {
	shops map[uint]*core.Shop
}

func (f *fakeShopDirectory) Shop(ctx context.Context, id uint) (*core.Shop, error) {
	return f.shops[id], nil
}

func newTestVerifier(t *testing.T, pin string) *OwnerPinVerifier {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)

	return &OwnerPinVerifier{
		Shops: &fakeShopDirectory{shops: map[uint]*core.Shop{
			1: {ShopId: 1, OwnerPinHash: string(hash)},
		}},
		Guard:  NewPinSecurityGuard(NewMemoryAttemptStore()),
		Secret: []byte("test-secret"),
	}
}

func TestVerifyOwnerPINSuccess(t *testing.T) {
	v := newTestVerifier(t, "174926")

	result, err := v.VerifyOwnerPIN(context.Background(), 1, "174926")
	require.NoError(t, err)
	assert.Equal(t, VerifySuccess, result.Outcome)
	require.NotEmpty(t, result.SessionToken)

	claims, err := ParseOwnerSessionToken(result.SessionToken, v.Secret)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.ShopID)
}

func TestVerifyOwnerPINIncorrect(t *testing.T) {
	v := newTestVerifier(t, "174926")

	result, err := v.VerifyOwnerPIN(context.Background(), 1, "174927")
	require.NoError(t, err)
	assert.Equal(t, VerifyIncorrectPin, result.Outcome)
	assert.Equal(t, MaxPinAttempts-1, result.RemainingAttempts)
	assert.Contains(t, result.Message, fmt.Sprintf("%d attempts remaining", MaxPinAttempts-1))
}

func TestVerifyOwnerPINLockout(t *testing.T) {
	v := newTestVerifier(t, "174926")
	ctx := context.Background()

	var result *PinVerification
	var err error
	for i := 0; i < MaxPinAttempts; i++ {
		result, err = v.VerifyOwnerPIN(ctx, 1, "999998")
		require.NoError(t, err)
	}
	assert.Equal(t, VerifyLockedOut, result.Outcome)
	assert.Contains(t, result.Message, "minutes")

	// the correct PIN is also refused while locked out
	result, err = v.VerifyOwnerPIN(ctx, 1, "174926")
	require.NoError(t, err)
	assert.Equal(t, VerifyLockedOut, result.Outcome)
}

func TestVerifyOwnerPINMalformedIsNotAnAttempt(t *testing.T) {
	v := newTestVerifier(t, "174926")
	ctx := context.Background()

	for i := 0; i < MaxPinAttempts*2; i++ {
		result, err := v.VerifyOwnerPIN(ctx, 1, "abc")
		require.NoError(t, err)
		assert.Equal(t, VerifyIncorrectPin, result.Outcome)
	}

	// format rejections never locked the shop out
	result, err := v.VerifyOwnerPIN(ctx, 1, "174926")
	require.NoError(t, err)
	assert.Equal(t, VerifySuccess, result.Outcome)
}

func TestVerifyResetsCountOnSuccess(t *testing.T) {
	v := newTestVerifier(t, "174926")
	ctx := context.Background()

	for i := 0; i < MaxPinAttempts-1; i++ {
		_, err := v.VerifyOwnerPIN(ctx, 1, "999998")
		require.NoError(t, err)
	}

	result, err := v.VerifyOwnerPIN(ctx, 1, "174926")
	require.NoError(t, err)
	assert.Equal(t, VerifySuccess, result.Outcome)

	// counter restarted after the success
	result, err = v.VerifyOwnerPIN(ctx, 1, "999998")
	require.NoError(t, err)
	assert.Equal(t, MaxPinAttempts-1, result.RemainingAttempts)
}
