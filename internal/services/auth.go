package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
	"studymate-backend/internal/repository"
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AuthService struct {
	users      userStore
	jwt        *middleware.JWTAuth
	denylist   TokenDenylist
	bcryptCost int
	log        *logger.Logger
}

func NewAuthService(users userStore, jwt *middleware.JWTAuth, denylist TokenDenylist, log *logger.Logger) *AuthService {
	if denylist == nil {
		denylist = NopTokenDenylist{}
	}
	return &AuthService{
		users:      users,
		jwt:        jwt,
		denylist:   denylist,
		bcryptCost: 12,
		log:        log,
	}
}

func validateCredentials(username, password string) error {
	fieldErrors := make(map[string]string)
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		fieldErrors["username"] = "Username is required"
	case utf8.RuneCountInString(username) > models.MaxUsernameLength:
		fieldErrors["username"] = fmt.Sprintf("Username must be at most %d characters", models.MaxUsernameLength)
	}
	switch {
	case password == "":
		fieldErrors["password"] = "Password is required"
	case len(password) > models.MaxPasswordBytes:
		fieldErrors["password"] = fmt.Sprintf("Password must be at most %d bytes", models.MaxPasswordBytes)
	}
	if len(fieldErrors) > 0 {
		return &ValidationError{Message: "Missing or invalid username or password", Fields: fieldErrors}
	}
	return nil
}

// Register stores a new user. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validateCredentials(req.Username, req.Password); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Message: "Username already exists"}
		}
		return nil, &PersistenceError{Op: "create user", Err: err}
	}

	s.log.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	if err := validateCredentials(req.Username, req.Password); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Invalid username or password"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "Invalid username or password"}
	}

	accessToken, err := s.jwt.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwt.TTL.Seconds()),
	}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, identity *middleware.Identity) error {
	if identity == nil || identity.TokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, identity.TokenID, time.Until(identity.ExpiresAt)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}
	return &models.UserProfile{ID: user.ID, Username: user.Username}, nil
}

// DeleteAccount removes the user along with all sessions and plan entries.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "User not found"}
		}
		return &PersistenceError{Op: "delete user", Err: err}
	}
	s.log.Info("User deleted", "user_id", userID)
	return nil
}
