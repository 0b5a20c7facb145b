package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OwnerSessionDuration is the fixed validity window of an unlocked owner
// session.
const OwnerSessionDuration = 30 * time.Minute

type OwnerSessionClaims struct {
	ShopID  uint   `json:"shopId"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

const ownerSessionPurpose = "owner-session"

// CreateOwnerSessionToken mints the token returned after a successful owner
// PIN verification. It gates owner-level screens for 30 minutes.
func CreateOwnerSessionToken(shopID uint, secret []byte) (string, error) {
	claims := OwnerSessionClaims{
		ShopID:  shopID,
		Purpose: ownerSessionPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "shopcrew",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(OwnerSessionDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseOwnerSessionToken validates an owner session token and returns its
// claims.
func ParseOwnerSessionToken(tokenStr string, secret []byte) (*OwnerSessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &OwnerSessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*OwnerSessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid owner session token")
	}
	if claims.Purpose != ownerSessionPurpose {
		return nil, fmt.Errorf("token is not an owner session token")
	}
	return claims, nil
}
