package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// アクセストークンから取り出す値
type Claims struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

// JWTを発行する
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

// HS256で署名する
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *JWTIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	exp := now.Add(i.ttl)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

// 署名・期限を検証してclaimsを返す
func ParseAccessToken(secret string, raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, ok := mc["sub"].(string)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, ErrInvalidToken
	}

	role, _ := mc["role"].(string)
	if role != string(model.RoleUser) && role != string(model.RoleAdmin) {
		return Claims{}, ErrInvalidToken
	}

	//数値はfloat64で入る
	tv, ok := mc["tv"].(float64)
	if !ok || tv < 0 {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: userID, Role: model.Role(role), TokenVersion: int(tv)}, nil
}
