// Package service implements the application logic between the HTTP handlers
// and the storage and quote layers. Services return *types.ServiceError for
// conditions the API maps to client errors; anything else is a server fault.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/invest-tracker/internal/auth"
	"github.com/invest-tracker/internal/logging"
	"github.com/invest-tracker/internal/mail"
	"github.com/invest-tracker/internal/models"
	"github.com/invest-tracker/internal/storage"
	"github.com/invest-tracker/internal/types"
)

// UserStore is the account persistence surface the auth service depends on
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, name *string, birthDate *models.Date, phone *string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthService handles registration, login, profile and password flows
type AuthService struct {
	users        UserStore
	tokens       *auth.TokenManager
	mailer       mail.Mailer
	resetURLBase string
	logger       *logging.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, tokens *auth.TokenManager, mailer mail.Mailer, resetURLBase string, logger *logging.Logger) *AuthService {
	return &AuthService{
		users:        users,
		tokens:       tokens,
		mailer:       mailer,
		resetURLBase: resetURLBase,
		logger:       logger,
	}
}

// RegisterInput carries the fields accepted at sign up
type RegisterInput struct {
	Email     string       `json:"email"`
	Password  string       `json:"password"`
	Name      *string      `json:"name"`
	BirthDate *models.Date `json:"birth_date"`
	Phone     *string      `json:"phone"`
}

// ProfileInput carries the self-service profile fields
type ProfileInput struct {
	Name      *string      `json:"name"`
	BirthDate *models.Date `json:"birth_date"`
	Phone     *string      `json:"phone"`
}

func invalidInput(details map[string]interface{}) *types.ServiceError {
	return &types.ServiceError{
		Code:    types.CodeInvalidInput,
		Message: "Invalid input",
		Details: details,
	}
}

// Register creates a new account with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	details := map[string]interface{}{}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		details["email"] = "a valid email is required"
	}
	if len(input.Password) < 6 {
		details["password"] = "password must be at least 6 characters"
	}
	if len(details) > 0 {
		return nil, invalidInput(details)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         input.Name,
		BirthDate:    input.BirthDate,
		Phone:        input.Phone,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, &types.ServiceError{
				Code:    types.CodeEmailInUse,
				Message: "Email is already registered",
			}
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login verifies the credentials and issues a session token. Unknown email
// and wrong password both answer unauthorized; the details field tells the
// frontend which input to highlight.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", &types.ServiceError{
				Code:    types.CodeUnauthorized,
				Message: "Invalid email or password",
				Details: map[string]interface{}{"field": "email"},
			}
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", &types.ServiceError{
			Code:    types.CodeUnauthorized,
			Message: "Invalid email or password",
			Details: map[string]interface{}{"field": "password"},
		}
	}

	token, err := s.tokens.IssueSession(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issuing session token: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")
	return user, token, nil
}

// GetProfile returns the account for the given user ID
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &types.ServiceError{Code: types.CodeNotFound, Message: "User not found"}
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

// UpdateProfile updates the self-service profile fields
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*models.User, error) {
	user, err := s.users.UpdateProfile(ctx, userID, input.Name, input.BirthDate, input.Phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &types.ServiceError{Code: types.CodeNotFound, Message: "User not found"}
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	details := map[string]interface{}{}
	if current == "" {
		details["currentPassword"] = "current password is required"
	}
	if len(next) < 6 {
		details["newPassword"] = "new password must be at least 6 characters"
	}
	if len(details) > 0 {
		return invalidInput(details)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &types.ServiceError{Code: types.CodeNotFound, Message: "User not found"}
		}
		return fmt.Errorf("loading user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, current) {
		return &types.ServiceError{
			Code:    types.CodeForbidden,
			Message: "Current password is incorrect",
		}
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.WithField("user_id", userID).Info("password changed")
	return nil
}

// ForgotPassword signs a short lived reset token and emails a reset link
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return invalidInput(map[string]interface{}{"email": "email is required"})
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &types.ServiceError{Code: types.CodeNotFound, Message: "No account found for this email"}
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	token, err := s.tokens.IssuePasswordReset(user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("issuing reset token: %w", err)
	}

	link := fmt.Sprintf("%s?token=%s", s.resetURLBase, token)
	body := fmt.Sprintf(
		"Hello,\r\n\r\nA password reset was requested for your account. "+
			"Open the link below to choose a new password. The link expires in one hour.\r\n\r\n%s\r\n\r\n"+
			"If you did not request this, you can ignore this message.\r\n",
		link,
	)

	if err := s.mailer.Send(user.Email, "Password recovery", body); err != nil {
		return fmt.Errorf("sending recovery email: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("password recovery email sent")
	return nil
}

// ResetPassword consumes a reset token and stores the new password
func (s *AuthService) ResetPassword(ctx context.Context, token, next string) error {
	if len(next) < 6 {
		return invalidInput(map[string]interface{}{"newPassword": "new password must be at least 6 characters"})
	}

	claims, err := s.tokens.VerifyPasswordReset(token)
	if err != nil {
		return &types.ServiceError{
			Code:    types.CodeUnauthorized,
			Message: "Invalid or expired reset token",
		}
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, claims.UserID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &types.ServiceError{Code: types.CodeNotFound, Message: "User not found"}
		}
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.WithField("user_id", claims.UserID).Info("password reset completed")
	return nil
}
