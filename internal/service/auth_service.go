package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"capsort/internal/cache"
	"capsort/internal/models"
	"capsort/internal/repository"
	"capsort/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// TokenConfig configures token issue and verification.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenClaims are the claims carried by an access token.
type TokenClaims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a user ID.
func (c *TokenClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid subject claim")
	}
	return uint(id), nil
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	userRepo repository.UserRepository
	redis    *redis.Client
	cfg      TokenConfig
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, redisClient *redis.Client, cfg TokenConfig) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		redis:    redisClient,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Signup registers a student account and signs it in.
func (s *AuthService) Signup(ctx context.Context, in validation.SignupInput) (*AuthResult, error) {
	if err := validation.ValidateSignup(&in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		FullName:      in.FullName,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
		Password:      hash,
		Role:          models.RoleStudent,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isConflict(err) {
			return nil, models.NewConflictError("User already exists")
		}
		return nil, storeError(err)
	}

	return s.result(user)
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in validation.LoginInput) (*AuthResult, error) {
	if err := validation.ValidateLogin(&in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, storeError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	return s.result(user)
}

// IssueToken signs an access token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	if s.cfg.Secret == "" {
		return "", errors.New("JWT secret not configured")
	}

	now := s.now()
	claims := TokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

// Authenticate verifies a bearer token, checks revocation and returns the
// caller's request context.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (models.RequestContext, *TokenClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return models.GuestContext(), nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	userID, err := claims.UserID()
	if err != nil || !claims.Role.Valid() {
		return models.GuestContext(), nil, models.NewUnauthorizedError("Invalid token claims")
	}

	revoked, err := cache.IsBlacklisted(ctx, s.redis, claims.ID)
	if err == nil && revoked {
		return models.GuestContext(), nil, models.NewUnauthorizedError("Token has been revoked")
	}

	return models.RequestContext{UserID: userID, Role: claims.Role}, claims, nil
}

// ParseToken validates signature, issuer, audience and expiry.
func (s *AuthService) ParseToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *TokenClaims) error {
	if claims == nil || claims.ID == "" {
		return models.NewUnauthorizedError("Token cannot be revoked")
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if err := cache.Blacklist(ctx, s.redis, claims.ID, ttl); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) result(user *models.User) (*AuthResult, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
