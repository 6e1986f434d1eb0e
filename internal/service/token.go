package service

import (
	"errors"
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTokenTTL is used when no expiration is configured.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenService issues and reads bearer tokens.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	// ParseUserID returns false for malformed, expired or wrongly signed
	// tokens. It never fails otherwise.
	ParseUserID(token string) (primitive.ObjectID, bool)
}

// jwtClaims defines the structure of the JWT payload. The role is not
// carried; it is read from the store on every request.
type jwtClaims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type jwtTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService creates an HS256 token service.
func NewTokenService(secret string, ttl time.Duration, issuer string) (TokenService, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &jwtTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue signs a token for user.
func (s *jwtTokenService) Issue(user *domain.User) (string, error) {
	now := s.now()
	claims := &jwtClaims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseUserID verifies the token and extracts the user id.
func (s *jwtTokenService) ParseUserID(tokenString string) (primitive.ObjectID, bool) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, false
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
