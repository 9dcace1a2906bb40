package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/golang-jwt/jwt/v5"
)

const minSecretKeySize = 32

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// Payload 身分服務簽發的 bearer token 內容
type Payload struct {
	UserID int64          `json:"id"`
	Role   constants.Role `json:"tipo"`
	jwt.RegisteredClaims
}

func (p *Payload) IsAdmin() bool {
	return p != nil && p.Role == constants.RoleAdmin
}

type Maker interface {
	CreateToken(userID int64, role constants.Role, duration time.Duration) (string, *Payload, error)
	VerifyToken(token string) (*Payload, error)
}

// JWTMaker HS256
type JWTMaker struct {
	secretKey []byte
}

func NewJWTMaker(secretKey string) (*JWTMaker, error) {
	if len(secretKey) < minSecretKeySize {
		return nil, fmt.Errorf("invalid key size: must be at least %d characters", minSecretKeySize)
	}
	return &JWTMaker{secretKey: []byte(secretKey)}, nil
}

func (m *JWTMaker) CreateToken(userID int64, role constants.Role, duration time.Duration) (string, *Payload, error) {
	now := time.Now()
	payload := &Payload{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(m.secretKey)
	if err != nil {
		return "", nil, err
	}
	return signed, payload, nil
}

func (m *JWTMaker) VerifyToken(tokenStr string) (*Payload, error) {
	payload := &Payload{}
	_, err := jwt.ParseWithClaims(tokenStr, payload, func(t *jwt.Token) (any, error) {
		return m.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if payload.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return payload, nil
}
