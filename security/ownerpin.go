package security

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"shopcrew.com/shopcrew/core"
)

// OwnerPinLength is the exact required length of an owner PIN. Staff PINs
// are 4 digits; the owner PIN is longer because it unlocks governance
// screens.
const OwnerPinLength = 6

// DefaultOwnerPin ships with new installations and must be changed; setting
// it back is rejected as weak.
const DefaultOwnerPin = "000000"

// ValidateOwnerPIN rejects PINs that are not exactly 6 digits, before any
// weakness check runs.
func ValidateOwnerPIN(pin string) error {
	if len(pin) != OwnerPinLength {
		return fmt.Errorf("owner PIN must be exactly %d digits", OwnerPinLength)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("owner PIN must contain digits only")
		}
	}
	return nil
}

// OwnerPinWeakness names the denylist category a PIN falls into, or ""
// when the PIN is acceptable. Callers surface the category verbatim so the
// owner knows what to avoid.
func OwnerPinWeakness(pin string) string {
	if pin == "" {
		return ""
	}
	if pin == DefaultOwnerPin {
		return "default PIN"
	}
	if strings.Count(pin, pin[:1]) == len(pin) {
		return "all digits identical"
	}
	if isSequence(pin, 1) {
		return "ascending sequence"
	}
	if isSequence(pin, -1) {
		return "descending sequence"
	}
	if isRepeatingPattern(pin) {
		return "repeating pattern"
	}
	return ""
}

// IsWeakOwnerPIN reports whether the PIN matches the denylist.
func IsWeakOwnerPIN(pin string) bool {
	return OwnerPinWeakness(pin) != ""
}

// isSequence reports consecutive digits with the given step, wrapping
// modulo 10 ("901234" counts as ascending).
func isSequence(pin string, step int) bool {
	for i := 1; i < len(pin); i++ {
		prev := int(pin[i-1] - '0')
		cur := int(pin[i] - '0')
		if cur != (prev+step+10)%10 {
			return false
		}
	}
	return true
}

// isRepeatingPattern catches short blocks repeated to fill the PIN, like
// "121212" or "123123".
func isRepeatingPattern(pin string) bool {
	for size := 1; size <= len(pin)/2; size++ {
		if len(pin)%size != 0 {
			continue
		}
		block := pin[:size]
		repeated := strings.Repeat(block, len(pin)/size)
		if repeated == pin {
			return true
		}
	}
	return false
}

// SetOwnerPIN validates, weakness-checks, and hashes a new owner PIN.
func SetOwnerPIN(pin string) (string, error) {
	if err := ValidateOwnerPIN(pin); err != nil {
		return "", err
	}
	if category := OwnerPinWeakness(pin); category != "" {
		return "", fmt.Errorf("owner PIN rejected: %s", category)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash owner PIN: %w", err)
	}
	return string(hash), nil
}

// VerifyOutcome is the result class of an owner PIN verification.
type VerifyOutcome string

const (
	VerifySuccess      VerifyOutcome = "success"
	VerifyIncorrectPin VerifyOutcome = "incorrect-pin"
	VerifyLockedOut    VerifyOutcome = "locked-out"
)

// PinVerification reports an owner PIN check. Message is user-actionable:
// remaining attempts on failure, exact minutes remaining on lockout.
type PinVerification struct {
	Outcome           VerifyOutcome `json:"outcome"`
	Message           string        `json:"message"`
	RemainingAttempts int           `json:"remainingAttempts,omitempty"`
	SessionToken      string        `json:"sessionToken,omitempty"`
}

// ShopDirectory is the slice of the store the verifier needs.
type ShopDirectory interface {
	Shop(ctx context.Context, id uint) (*core.Shop, error)
}

// OwnerPinVerifier checks owner PINs behind the rate-limit guard and mints
// a 30-minute owner session token on success.
type OwnerPinVerifier struct {
	Shops  ShopDirectory
	Guard  *PinSecurityGuard
	Secret []byte
}

// VerifyOwnerPIN runs the full owner unlock path: lockout check, PIN format
// check, bcrypt comparison, attempt bookkeeping, session token.
func (v *OwnerPinVerifier) VerifyOwnerPIN(ctx context.Context, shopID uint, pin string) (*PinVerification, error) {
	id := fmt.Sprintf("owner-pin:%d", shopID)

	locked, err := v.Guard.IsLockedOut(ctx, id)
	if err != nil {
		return nil, err
	}
	if locked {
		return v.lockedResult(ctx, id)
	}

	if err := ValidateOwnerPIN(pin); err != nil {
		// malformed input is not an attempt; no bookkeeping
		return &PinVerification{
			Outcome: VerifyIncorrectPin,
			Message: err.Error(),
		}, nil
	}

	shop, err := v.Shops.Shop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("read shop: %w", err)
	}
	if shop == nil {
		return nil, fmt.Errorf("shop %d not found", shopID)
	}

	if bcrypt.CompareHashAndPassword([]byte(shop.OwnerPinHash), []byte(pin)) != nil {
		remaining, err := v.Guard.RecordFailedAttempt(ctx, id)
		if err != nil {
			return nil, err
		}
		if remaining == 0 {
			return v.lockedResult(ctx, id)
		}
		return &PinVerification{
			Outcome:           VerifyIncorrectPin,
			Message:           fmt.Sprintf("incorrect PIN; %d attempts remaining", remaining),
			RemainingAttempts: remaining,
		}, nil
	}

	if err := v.Guard.RecordSuccessfulAttempt(ctx, id); err != nil {
		return nil, err
	}

	token, err := CreateOwnerSessionToken(shopID, v.Secret)
	if err != nil {
		return nil, err
	}
	return &PinVerification{
		Outcome:      VerifySuccess,
		Message:      "owner session unlocked",
		SessionToken: token,
	}, nil
}

func (v *OwnerPinVerifier) lockedResult(ctx context.Context, id string) (*PinVerification, error) {
	remaining, err := v.Guard.LockoutRemaining(ctx, id)
	if err != nil {
		return nil, err
	}
	minutes := int(remaining.Minutes()) + 1
	return &PinVerification{
		Outcome: VerifyLockedOut,
		Message: fmt.Sprintf("too many failed attempts; try again in %d minutes", minutes),
	}, nil
}
