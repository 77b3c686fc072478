package service

import (
	"errors"
	"strconv"
	"time"

	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "bounty-backend"

// Claims JWT 载荷
type Claims struct {
	UserID int64           `json:"uid"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer 签发和校验 HS256 令牌
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue 为用户签发令牌
func (t *TokenIssuer) Issue(user *models.User) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, apperr.Internal(err, "signing token")
	}
	return signed, expires, nil
}

// Parse 校验令牌并解析出请求身份
func (t *TokenIssuer) Parse(token string) (models.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Actor{}, apperr.Unauthenticated(apperr.CodeTokenExpired, "token expired")
		}
		return models.Actor{}, apperr.Unauthenticated(apperr.CodeInvalidToken, "invalid token")
	}
	if claims.UserID <= 0 || !claims.Role.IsValid() {
		return models.Actor{}, apperr.Unauthenticated(apperr.CodeInvalidToken, "invalid token")
	}
	return models.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}
