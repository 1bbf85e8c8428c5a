package utils

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const tokenIssuer = "mapexe"

type JWTClaims struct {
	AccountID uint   `json:"account_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

var jwtSecret = []byte("your-secret-key-change-in-production")

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// GenerateJWT signs an access token for the account. Roles are not embedded:
// they are read from the store on every request so promotions apply at once.
func GenerateJWT(accountID uint, username string, ttlHours int) (string, *JWTClaims, error) {
	now := time.Now()
	claims := &JWTClaims{
		AccountID: accountID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(accountID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// RevocationList remembers logged-out token ids until they would have
// expired anyway.
type RevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{revoked: make(map[string]time.Time)}
}

func (r *RevocationList) Revoke(tokenID string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, exp := range r.revoked {
		if now.After(exp) {
			delete(r.revoked, id)
		}
	}
	r.revoked[tokenID] = expiresAt
}

func (r *RevocationList) IsRevoked(tokenID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.revoked[tokenID]
	return ok
}
