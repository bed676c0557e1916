package auth

import (
	"strconv"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller of a pool endpoint.
type Identity struct {
	UserID string
}

// TokenVerifier checks HS256 access tokens issued by the main backend.
// No session lookup is done; a valid signature and expiry are enough.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses tokenString and returns the caller identity.
func (v *TokenVerifier) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	// The main backend encodes user_id as a number; service tokens use a string.
	switch id := claims["user_id"].(type) {
	case float64:
		return &Identity{UserID: strconv.FormatInt(int64(id), 10)}, nil
	case string:
		if id == "" {
			return nil, domain.ErrInvalidToken
		}
		return &Identity{UserID: id}, nil
	default:
		return nil, domain.ErrInvalidToken
	}
}

// Issue signs a token for userID valid for ttl. Used by cmd tooling and tests.
func (v *TokenVerifier) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	})
	return token.SignedString(v.secret)
}
