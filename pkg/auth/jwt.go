package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// UserMetadata mirrors the profile metadata the identity provider attaches to a session.
type UserMetadata struct {
	BusinessName string `json:"business_name,omitempty"`
	FullName     string `json:"full_name,omitempty"`
}

type Claims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

// JWTService issues and validates HS256 access tokens.
type JWTService interface {
	GenerateAccessToken(p *model.Principal) (string, error)
	ValidateToken(token string) (*model.Principal, error)
}

type jwtService struct {
	secret []byte
	issuer string
	expiry time.Duration
}

func NewJWTService(secret, issuer string, expiry time.Duration) JWTService {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &jwtService{secret: []byte(secret), issuer: issuer, expiry: expiry}
}

func (s *jwtService) GenerateAccessToken(p *model.Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		Email: p.Email,
		UserMetadata: UserMetadata{
			BusinessName: p.BusinessName,
			FullName:     p.FullName,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *jwtService) ValidateToken(tokenString string) (*model.Principal, error) {
	var claims Claims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return &model.Principal{
		UserID:       userID,
		Email:        claims.Email,
		BusinessName: claims.UserMetadata.BusinessName,
		FullName:     claims.UserMetadata.FullName,
	}, nil
}
