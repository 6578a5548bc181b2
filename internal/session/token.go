package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired inspects the exp claim without verifying the signature; the API
// remains the judge of validity. Opaque tokens are never considered expired.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
