package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/google/uuid"
	"github.com/harxxhilgg/univent/internal/infrastructure/auth"
	"github.com/harxxhilgg/univent/internal/infrastructure/kafka"
	"github.com/harxxhilgg/univent/internal/infrastructure/redis"
	"github.com/harxxhilgg/univent/internal/models"
	"github.com/harxxhilgg/univent/internal/repository"
	"github.com/harxxhilgg/univent/internal/session"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the hashing cost the accounts were created with;
// lowering it would leave two hash populations behind.
const bcryptCost = 14

type AuthService interface {
	Signup(ctx context.Context, username, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	DeleteAccount(ctx context.Context, email string) error
}

type authService struct {
	userRepo    repository.UserRepository
	redisClient redis.Client
	producer    kafka.EventProducer
	issuer      *auth.TokenIssuer
}

func NewAuthService(
	userRepo repository.UserRepository,
	redisClient redis.Client,
	producer kafka.EventProducer,
	issuer *auth.TokenIssuer,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		redisClient: redisClient,
		producer:    producer,
		issuer:      issuer,
	}
}

func (s *authService) Signup(ctx context.Context, username, email, password string) (*models.User, string, error) {
	tracer := otel.Tracer("univent")
	ctx, span := tracer.Start(ctx, "Signup")
	defer span.End()

	if username == "" || email == "" || password == "" {
		span.SetStatus(codes.Error, "missing fields")
		return nil, "", pkgerrors.ErrMissingFields
	}
	if session.IsGuest(email) {
		// The guest sentinel must never become a real account; every guest
		// gate keys off this address.
		span.SetStatus(codes.Error, "reserved email")
		slog.Warn("signup with reserved guest email")
		return nil, "", fmt.Errorf("%w: email is reserved", pkgerrors.ErrInvalidInput)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if existing != nil {
		span.SetStatus(codes.Error, "email already registered")
		slog.Warn("signup with registered email", "email", email)
		return nil, "", pkgerrors.ErrEmailTaken
	}
	if err != nil && !stderrors.Is(err, pkgerrors.ErrUserNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user check failed")
		slog.Error("failed to check user existence", "email", email, "error", err)
		return nil, "", fmt.Errorf("%w: failed to check user existence", pkgerrors.ErrInternal)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "password hashing failed")
		slog.Error("failed to hash password", "email", email, "error", err)
		return nil, "", fmt.Errorf("%w: failed to hash password", pkgerrors.ErrInternal)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if stderrors.Is(err, pkgerrors.ErrEmailTaken) {
			span.SetStatus(codes.Error, "email already registered")
			return nil, "", err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "user creation failed")
		slog.Error("failed to create user", "email", email, "error", err)
		return nil, "", fmt.Errorf("%w: failed to create user", pkgerrors.ErrInternal)
	}

	token, err := s.issueAndCache(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, "", err
	}

	s.publishUserEvent(user, "user_registered")

	slog.Info("user registered", "user_id", user.ID, "username", username)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	tracer := otel.Tracer("univent")
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if email == "" || password == "" {
		span.SetStatus(codes.Error, "missing fields")
		return nil, "", pkgerrors.ErrMissingFields
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if stderrors.Is(err, pkgerrors.ErrUserNotFound) {
		span.SetStatus(codes.Error, "unknown email")
		slog.Info("login failed", "email", email)
		return nil, "", pkgerrors.ErrInvalidCredentials
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user lookup failed")
		slog.Error("failed to look up user", "email", email, "error", err)
		return nil, "", fmt.Errorf("%w: failed to look up user", pkgerrors.ErrInternal)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		span.SetStatus(codes.Error, "wrong password")
		slog.Info("invalid password", "email", email)
		return nil, "", pkgerrors.ErrInvalidCredentials
	}

	token, err := s.issueAndCache(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, "", err
	}

	slog.Info("user logged in", "user_id", user.ID, "email", email)
	return user, token, nil
}

func (s *authService) DeleteAccount(ctx context.Context, email string) error {
	tracer := otel.Tracer("univent")
	ctx, span := tracer.Start(ctx, "DeleteAccount")
	defer span.End()

	if session.IsGuest(email) {
		span.SetStatus(codes.Error, "guest account")
		return pkgerrors.ErrGuestRestricted
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		span.SetStatus(codes.Error, "user lookup failed")
		return err
	}

	if err := s.userRepo.DeleteByEmail(ctx, email); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		slog.Error("failed to delete account", "email", email, "error", err)
		return fmt.Errorf("%w: failed to delete account", pkgerrors.ErrInternal)
	}

	// Revoke the cached token so in-flight sessions die with the account.
	tokenKey := fmt.Sprintf("user:%d:token", user.ID)
	if err := s.redisClient.Del(ctx, tokenKey); err != nil {
		slog.Warn("failed to revoke token for deleted account", "user_id", user.ID, "error", err)
	}

	s.publishUserEvent(user, "user_deleted")

	slog.Info("account deleted", "user_id", user.ID, "email", email)
	return nil
}

func (s *authService) issueAndCache(ctx context.Context, user *models.User) (string, error) {
	token, err := s.issuer.Generate(user)
	if err != nil {
		slog.Error("failed to generate token", "user_id", user.ID, "error", err)
		return "", fmt.Errorf("%w: failed to generate token", pkgerrors.ErrInternal)
	}

	tokenKey := fmt.Sprintf("user:%d:token", user.ID)
	if err := s.redisClient.Set(ctx, tokenKey, token, auth.DefaultTokenTTL); err != nil {
		slog.Error("failed to cache token", "user_id", user.ID, "error", err)
	}
	return token, nil
}

func (s *authService) publishUserEvent(user *models.User, eventType string) {
	event := map[string]interface{}{
		"event_type": eventType,
		"user_id":    user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal user event", "user_id", user.ID, "error", err)
		return
	}

	go func() {
		key := uuid.NewString()
		retries := 3
		for i := 0; i < retries; i++ {
			if err := s.producer.Send(context.Background(), "users", key, eventBytes); err == nil {
				return
			}
			time.Sleep(time.Second * time.Duration(i+1))
		}
		slog.Error("failed to publish user event after retries", "user_id", user.ID, "event_type", eventType)
	}()
}
