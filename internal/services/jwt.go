package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "salesdesk"

// Token audiences keep the token kinds apart: a refresh token never passes as
// an access token, an API key never passes as a session.
const (
	audienceAccess  = "authenticated"
	audienceRefresh = "refresh"
	audienceAPIKey  = "api_key"
	audienceConfirm = "email_confirmation"
)

// KeyRole is the role carried by a backend API key.
type KeyRole string

const (
	KeyRoleAnon    KeyRole = "anon"
	KeyRoleService KeyRole = "service_role"
)

var ErrInvalidKey = errors.New("invalid api key")

type JWTService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

type KeyClaims struct {
	Role KeyRole `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

func NewJWTService(secret string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *JWTService) GenerateTokenPair(userID uuid.UUID, email string) (*TokenPair, error) {
	now := time.Now()

	accessClaims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{audienceAccess},
		},
	}

	accessTokenString, err := s.sign(accessClaims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{audienceRefresh},
		ID:        uuid.New().String(),
	}

	refreshTokenString, err := s.sign(refreshClaims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.accessExpiry.Seconds()),
	}, nil
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, s.keyFunc,
		jwt.WithAudience(audienceAccess), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (uuid.UUID, error) {
	return s.parseSubject(tokenString, audienceRefresh)
}

// GenerateAPIKey issues a non-expiring backend key for the given role.
func (s *JWTService) GenerateAPIKey(role KeyRole) (string, error) {
	claims := KeyClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   issuer,
			Audience: jwt.ClaimStrings{audienceAPIKey},
		},
	}
	key, err := s.sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign api key: %w", err)
	}
	return key, nil
}

// ParseAPIKey returns the role of a backend key signed with this service's secret.
func (s *JWTService) ParseAPIKey(key string) (KeyRole, error) {
	token, err := jwt.ParseWithClaims(key, &KeyClaims{}, s.keyFunc,
		jwt.WithAudience(audienceAPIKey), jwt.WithIssuer(issuer))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	claims, ok := token.Claims.(*KeyClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidKey
	}

	switch claims.Role {
	case KeyRoleAnon, KeyRoleService:
		return claims.Role, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidKey, claims.Role)
	}
}

// GenerateConfirmationToken issues a 24h token confirming the identity's email.
func (s *JWTService) GenerateConfirmationToken(identityID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   identityID.String(),
		Audience:  jwt.ClaimStrings{audienceConfirm},
	}
	token, err := s.sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign confirmation token: %w", err)
	}
	return token, nil
}

func (s *JWTService) ValidateConfirmationToken(tokenString string) (uuid.UUID, error) {
	return s.parseSubject(tokenString, audienceConfirm)
}

func (s *JWTService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

func (s *JWTService) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}

func (s *JWTService) parseSubject(tokenString, audience string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, s.keyFunc,
		jwt.WithAudience(audience), jwt.WithIssuer(issuer))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse %s token: %w", audience, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid %s token", audience)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}

	return userID, nil
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
