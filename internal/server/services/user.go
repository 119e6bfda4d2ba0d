package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server/auth"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/repomanager"
)

const (
	maxUserNameLen    = 50
	minPasswordLength = 6
)

// UserService registers and authenticates users. Password hashing and token
// handling are delegated to the auth collaborators.
type UserService struct {
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      auth.TokenIssuer
	logger      logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, hasher auth.PasswordHasher, tokens auth.TokenIssuer, logger logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger.With("module", "users"),
	}
}

// Register creates a user and returns it with a fresh token. Emails are
// stored lowercase; a collision is common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateRegistration(name, email, password); err != nil {
		return nil, "", err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repomanager.Repositories().Users.Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("error issuing token: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

func validateRegistration(name, email, password string) error {
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return common.NewValidationError("please provide name, email and password", missing...)
	}

	if utf8.RuneCountInString(name) > maxUserNameLen {
		return common.NewValidationError(fmt.Sprintf("name must be at most %d characters", maxUserNameLen), "name")
	}
	if !validEmail(email) {
		return common.NewValidationError("please provide a valid email", "email")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return common.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength), "password")
	}
	return nil
}

// validEmail accepts bare addresses only ("a@b.c"), not display-name forms.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at:], ".")
}

// Login checks credentials. Unknown emails and wrong passwords both yield
// common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {

	email = strings.ToLower(strings.TrimSpace(email))

	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, "", common.NewValidationError("please provide email and password", missing...)
	}

	user, err := s.repomanager.Repositories().Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", fmt.Errorf("error loading user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("error issuing token: %w", err)
	}

	return user, token, nil
}

// Me returns the caller's profile.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Repositories().Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// Authenticate resolves a bearer token to the id of an existing user.
func (s *UserService) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}

	if _, err := s.repomanager.Repositories().Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error loading user: %w", err)
	}

	return userID, nil
}
