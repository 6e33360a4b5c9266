package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenTypeAccess marks tokens accepted by the API.
const TokenTypeAccess = "access"

var ErrInvalidToken = errors.New("invalid token")

type Service interface {
	// GenerateAccessToken signs a token for a reviewer. subject is free form,
	// usually the reviewer's name or email.
	GenerateAccessToken(subject string, ttl time.Duration) (token string, expiresAt int64, err error)
	// ValidateAccessToken returns the subject of a valid access token.
	ValidateAccessToken(tokenString string) (subject string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
	now       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(subject string, ttl time.Duration) (token string, expiresAt int64, err error) {
	if ttl <= 0 {
		return "", 0, errors.New("token lifetime must be positive")
	}
	now := j.now()
	expiresAt = now.Add(ttl).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  subject,
		"type": TokenTypeAccess,
		"iat":  now.Unix(),
		"exp":  expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ValidateAccessToken(tokenString string) (subject string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeAccess {
		return "", ErrInvalidToken
	}

	return token.Subject(), nil
}
