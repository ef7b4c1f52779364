package services

import (
	"context"
	"fmt"
	"time"

	"ideaspark/internal/apperrors"
	"ideaspark/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for malformed, expired or mistyped tokens.
var ErrInvalidToken = apperrors.Unauthorized("invalid token")

// TokenPair is returned on login and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenClaims is the decoded payload of a valid token.
type TokenClaims struct {
	UserID    string
	Username  string
	TokenType string
	ExpiresAt time.Time
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	users      *UserService
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *logrus.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, jwtSecret string, accessTTL, refreshTTL time.Duration, log *logrus.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

// Login authenticates a user and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, identifier, password, ip string) (*TokenPair, *models.User, error) {
	user, err := s.users.Authenticate(ctx, identifier, password, ip)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.IssueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "ip": ip}).Info("user logged in")
	return pair, user, nil
}

// IssueTokens signs an access and a refresh token for user.
func (s *AuthService) IssueTokens(user *models.User) (*TokenPair, error) {
	access, err := s.sign(user, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) sign(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    user.ID,
		"username":   user.Username,
		"token_type": tokenType,
		"jti":        uuid.New().String(),
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Refresh exchanges a refresh token for a new pair. The account must still
// be active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.Unauthorized("account is disabled")
	}
	return s.IssueTokens(user)
}

// Verify validates a token of the given type. An empty tokenType accepts
// either type.
func (s *AuthService) Verify(tokenString, tokenType string) (*TokenClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	out := &TokenClaims{}
	out.UserID, _ = claims["user_id"].(string)
	out.Username, _ = claims["username"].(string)
	out.TokenType, _ = claims["token_type"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if out.UserID == "" {
		return nil, ErrInvalidToken
	}
	if tokenType != "" && out.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return out, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.WithError(err).Debug("token validation failed")
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "invalid token", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
