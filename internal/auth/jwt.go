package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dibyam12/SMS-backend/internal/model"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed payload, wrong kind, expiry. Callers never see raw jwt errors.
var ErrInvalidToken = errors.New("invalid token")

// Kind selects the signing secret and lifetime of a token.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies access and refresh tokens. Stateless: it keeps
// no record of what it issued.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL is the validity window of refresh tokens; session store entries
// expire on the same schedule.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) Issue(userID string, role model.Role, kind Kind) (string, error) {
	secret, ttl := i.kindParams(kind)
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			// iat/exp have second precision; the jti keeps two tokens
			// issued within the same second distinct, which rotation and
			// the single-active-session overwrite depend on.
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (i *Issuer) Verify(tokenString string, kind Kind) (*Claims, error) {
	secret, _ := i.kindParams(kind)
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(i.issuer))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (i *Issuer) kindParams(kind Kind) ([]byte, time.Duration) {
	if kind == KindRefresh {
		return i.refreshSecret, i.refreshTTL
	}
	return i.accessSecret, i.accessTTL
}
