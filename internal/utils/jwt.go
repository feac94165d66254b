package utils // package utils provides helpers for password hashing and access tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// AccessToken represents a signed HS256 JWT along with its expiry.
// Access tokens are short-lived, stateless and carried in the
// Authorization header of protected requests; there is no server-side
// session or revocation store, expiry is the only natural death.
type AccessToken struct {
	Token string    `json:"token"`   // the serialized JWT string
	Exp   time.Time `json:"expires"` // the UTC expiration time
}

// ErrInvalidToken is the single failure returned by ParseAccessToken.
// Expired, forged and malformed tokens all collapse into it so callers
// cannot tell the cases apart (and neither can clients).
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user. The payload
// carries only the registered claims: subject (sub) set to the user ID,
// issued-at (iat) and expiration (exp) computed as a whole-minute
// offset from now. All timestamps are epoch-based UTC.
func NewAccessToken(secret string, userID uint64, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates the signature and expiry of raw under
// secret and returns the subject user ID. Only HMAC-signed tokens are
// accepted; a token claiming any other algorithm is rejected.
func ParseAccessToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	// Numeric JSON claims decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok || sub < 0 {
		return 0, ErrInvalidToken
	}
	return uint64(sub), nil
}
