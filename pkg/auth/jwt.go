package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// JWTService issues and validates access and refresh tokens for staff
// members.
type JWTService interface {
	GenerateAccessToken(staff *model.StaffMember) (string, error)
	GenerateRefreshToken(staff *model.StaffMember) (string, error)
	ValidateToken(token string) (*model.TokenClaims, error)
	ValidateRefreshToken(token string) (*model.TokenClaims, error)
	AccessTokenTTL() time.Duration
}

type jwtService struct {
	secret        []byte
	refreshSecret []byte
	expiry        time.Duration
	refreshExpiry time.Duration
}

func NewJWTService(secret, refreshSecret string, expiryHours, refreshExpiryHours int) JWTService {
	return &jwtService{
		secret:        []byte(secret),
		refreshSecret: []byte(refreshSecret),
		expiry:        time.Duration(expiryHours) * time.Hour,
		refreshExpiry: time.Duration(refreshExpiryHours) * time.Hour,
	}
}

type staffClaims struct {
	StaffID string `json:"staff_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

func (s *jwtService) GenerateAccessToken(staff *model.StaffMember) (string, error) {
	return s.generate(staff, s.secret, s.expiry)
}

func (s *jwtService) GenerateRefreshToken(staff *model.StaffMember) (string, error) {
	return s.generate(staff, s.refreshSecret, s.refreshExpiry)
}

func (s *jwtService) generate(staff *model.StaffMember, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := staffClaims{
		StaffID: staff.ID.String(),
		Email:   staff.Email,
		Role:    string(staff.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(token string) (*model.TokenClaims, error) {
	return s.validate(token, s.secret)
}

func (s *jwtService) ValidateRefreshToken(token string) (*model.TokenClaims, error) {
	return s.validate(token, s.refreshSecret)
}

func (s *jwtService) validate(tokenStr string, secret []byte) (*model.TokenClaims, error) {
	var claims staffClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	staffID, err := uuid.Parse(claims.StaffID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &model.TokenClaims{
		StaffID: staffID,
		Email:   claims.Email,
		Role:    model.StaffRole(claims.Role),
	}, nil
}

func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.expiry
}
