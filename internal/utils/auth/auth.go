package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

// IsWellFormed reports whether token has the three non-empty dot-separated segments of a JWT.
// Placeholder strings left behind by serializers ("null", "undefined") are rejected.
func IsWellFormed(token string) bool {
	if strings.TrimSpace(token) == "" || token == "null" || token == "undefined" {
		return false
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}

// Preview returns the first 20 characters of token for logging.
func Preview(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}

// UnverifiedClaims decodes the claims without checking the signature. The client never holds the
// signing key; the claims are only hints.
func UnverifiedClaims(token string) (jwt.MapClaims, error) {
	if !IsWellFormed(token) {
		return nil, errors.New("token contains an invalid number of segments")
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpiryHint returns the exp claim of token, if it has one.
func ExpiryHint(token string) (time.Time, bool) {
	claims, err := UnverifiedClaims(token)
	if err != nil {
		return time.Time{}, false
	}
	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0), true
	case int64:
		return time.Unix(exp, 0), true
	}
	return time.Time{}, false
}

// Issue signs an HS256 access token for subject.
func Issue(secret []byte, subject, email string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"role":  "authenticated",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks an HS256 token and returns its claims.
func Verify(secret []byte, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
