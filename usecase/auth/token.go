package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/kanban/domain"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	SessionID string      `json:"sid"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	issuer string
}

func NewTokens(secret, issuer string) *Tokens {
	return &Tokens{secret: []byte(secret), issuer: issuer}
}

// Issue signs a token bound to session.
func (t *Tokens) Issue(session *domain.Session) (string, error) {
	claims := Claims{
		UserID:    session.UserID,
		Name:      session.Name,
		Role:      session.Role,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies signature, expiry and issuer.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}
	if t.issuer != "" && !claims.VerifyIssuer(t.issuer, true) {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "invalid token issuer")
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "incomplete token")
	}
	return claims, nil
}

func expiresIn(at, now time.Time) int {
	if d := at.Sub(now); d > 0 {
		return int(d / time.Second)
	}
	return 0
}
