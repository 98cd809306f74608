package auth

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
	"github.com/lijoraj-p-r/NoPaper/internal/observability/metrics"
	"github.com/lijoraj-p-r/NoPaper/internal/pkg/config"
)

const minPasswordLength = 7

// Ensure implementation satisfies the interface
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the business logic contract.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *models.UserAuth, err error)
	Register(ctx context.Context, email, password string) (token string, user *models.UserAuth, err error)
	GetUserByID(ctx context.Context, userID int64) (*models.UserAuth, error)
}

// AuthServiceImpl provides the implementation for AuthService.
type AuthServiceImpl struct {
	logger *zap.Logger
	repo   AuthRepo
	cfg    *config.Config
	jwt    *JWTService
}

// NewAuthService creates a new authentication service instance.
func NewAuthService(repo AuthRepo, cfg *config.Config, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{logger: logger, repo: repo, cfg: cfg, jwt: NewJWTService()}
}

func (s *AuthServiceImpl) jwtConfig() JWTConfig {
	return JWTConfig{
		SecretKey:       s.cfg.JWT.SecretKey,
		TokenExpiration: s.cfg.JWT.AccessTokenTTL,
		Issuer:          s.cfg.JWT.Issuer,
		Logger:          s.logger,
	}
}

// Login validates credentials and issues an access token.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *models.UserAuth, error) {
	l := s.logger.With(zap.String("method", "Login"), zap.String("email", email))
	l.Debug("Attempting login")

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		l.Warn("GetUserByEmail failed")
		metrics.Get().AuthFailures.Add(ctx, 1)
		// Don't reveal whether the user exists or the password is wrong
		return "", nil, fmt.Errorf("incorrect email or password: %w", models.ErrUnauthenticated)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		l.Warn("Password comparison failed", zap.Int64("userID", user.ID))
		metrics.Get().AuthFailures.Add(ctx, 1)
		return "", nil, fmt.Errorf("incorrect email or password: %w", models.ErrUnauthenticated)
	}

	token, err := s.jwt.GenerateToken(s.jwtConfig(), user.ID, user.Email, user.Role)
	if err != nil {
		l.Error("Failed to generate token", zap.Int64("userID", user.ID), zap.Error(err))
		return "", nil, fmt.Errorf("app error generating token: %w", err)
	}

	l.Info("Login successful")
	metrics.Get().Logins.Add(ctx, 1)
	return token, user, nil
}

// Register validates the request, stores the new user, and issues an
// access token so the client session can be created from the signup
// response directly.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password string) (string, *models.UserAuth, error) {
	l := s.logger.With(zap.String("method", "Register"), zap.String("email", email))
	l.Debug("Attempting registration")

	tracer := otel.Tracer("nopaper")
	ctx, span := tracer.Start(ctx, "AuthService.Register", trace.WithAttributes(
		attribute.String("email", email),
	))
	defer span.End()

	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return "", nil, fmt.Errorf("invalid email address: %w", models.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return "", nil, fmt.Errorf("password must be at least %d characters long: %w", minPasswordLength, models.ErrValidation)
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("Failed to hash password", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Password hashing failed")
		return "", nil, fmt.Errorf("could not process password")
	}

	user, err := s.repo.Register(ctx, email, string(hashedPasswordBytes), models.RoleUser)
	if err != nil {
		l.Warn("Repository registration failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository registration failed")
		return "", nil, fmt.Errorf("registration failed: %w", err)
	}

	token, err := s.jwt.GenerateToken(s.jwtConfig(), user.ID, user.Email, user.Role)
	if err != nil {
		l.Error("Failed to generate token", zap.Int64("userID", user.ID), zap.Error(err))
		return "", nil, fmt.Errorf("app error generating token: %w", err)
	}

	l.Info("Registration successful", zap.Int64("userID", user.ID))
	span.SetStatus(codes.Ok, "User registered")
	return token, user, nil
}

// GetUserByID resolves a user from a token subject.
func (s *AuthServiceImpl) GetUserByID(ctx context.Context, userID int64) (*models.UserAuth, error) {
	return s.repo.GetUserByID(ctx, userID)
}
