// Package auth owns identity: registration, login, credential changes and
// the two verification primitives the rest of the system builds on.
// VerifyPassword gates credential/account changes; VerifyPin gates money
// movement. The two are deliberately separate secrets.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"atlasbank/internal/models"
	"atlasbank/internal/repositories"
	"atlasbank/internal/utils"
	"atlasbank/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// ActivityRecorder mirrors ledger.ActivityRecorder; auth records
// credential events as user-level entries.
type ActivityRecorder interface {
	Record(ctx context.Context, userID uint, accountID *uint, activityType, description string) error
}

type Service interface {
	Register(ctx context.Context, input *models.CreateUserInput) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
	SetPin(ctx context.Context, username, currentPassword, newPin string) error
	UpdateProfile(ctx context.Context, username string, input *models.ProfileUpdateInput) (*models.User, error)
	Deactivate(ctx context.Context, username, password string) error

	// Verification primitives used by the ledger engine and middleware.
	VerifyPassword(ctx context.Context, username, password string) error
	VerifyPin(ctx context.Context, username, pin string) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserTokenVersion(ctx context.Context, id uint) (int, error)
}

type service struct {
	users    repositories.UserRepository
	activity ActivityRecorder
}

func NewService(users repositories.UserRepository, activity ActivityRecorder) Service {
	if users == nil {
		panic("user repository is required")
	}
	return &service{users: users, activity: activity}
}

func (s *service) Register(ctx context.Context, input *models.CreateUserInput) (*models.User, error) {
	if input.Username == "" || input.Email == "" || input.FullName == "" {
		return nil, errors.New("full name, username and email are required")
	}
	if err := validation.CheckPassword(input.Password); err != nil {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, ErrUsernameTaken
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:      input.FullName,
		Username:      input.Username,
		Email:         input.Email,
		Password:      string(hash),
		AccountStatus: models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("user registered: %s", user.Username)
	return user, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*models.User, string, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", "", ErrAuthentication
	}
	if user.AccountStatus != models.UserStatusActive {
		return nil, "", "", ErrUserInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("login failed: incorrect password for user %s", username)
		return nil, "", "", ErrAuthentication
	}

	access, refresh, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}
	return user, access, refresh, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", ErrAuthentication
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", ErrAuthentication
	}
	if user.TokenVersion != claims.TokenVersion {
		return "", "", ErrAuthentication
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
	})
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.users.IncrementTokenVersion(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	if err := s.VerifyPassword(ctx, username, currentPassword); err != nil {
		return err
	}
	if err := validation.CheckPassword(newPassword); err != nil {
		return ErrWeakPassword
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hash)
	user.TokenVersion++ // invalidate existing tokens
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.record(ctx, user.ID, models.ActivityPasswordChange, "Changed account password")
	return nil
}

func (s *service) SetPin(ctx context.Context, username, currentPassword, newPin string) error {
	if err := s.VerifyPassword(ctx, username, currentPassword); err != nil {
		return err
	}
	if !validation.ValidPin(newPin) {
		return ErrBadPinFormat
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	wasSet := user.Pin != nil

	hash, err := bcrypt.GenerateFromPassword([]byte(newPin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	pin := string(hash)
	user.Pin = &pin
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	description := "Set initial security PIN"
	if wasSet {
		description = "Updated security PIN"
	}
	s.record(ctx, user.ID, models.ActivityPinChange, description)
	return nil
}

func (s *service) UpdateProfile(ctx context.Context, username string, input *models.ProfileUpdateInput) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if input.Email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, input.Email); err == nil && existing.Username != username {
			return nil, ErrEmailInUse
		}
	}

	var changes []string
	if user.FullName != input.FullName {
		changes = append(changes, "Full Name")
	}
	if user.Email != input.Email {
		changes = append(changes, "Email")
	}
	if user.PhoneNumber != input.PhoneNumber {
		changes = append(changes, "Phone Number")
	}
	if user.Address != input.Address {
		changes = append(changes, "Address")
	}
	if user.NomineeName != input.NomineeName {
		changes = append(changes, "Nominee Name")
	}
	if !equalDates(user.DateOfBirth, input.DateOfBirth) {
		changes = append(changes, "Date of Birth")
	}
	if len(changes) == 0 {
		return user, nil
	}

	user.FullName = input.FullName
	user.Email = input.Email
	user.PhoneNumber = input.PhoneNumber
	user.Address = input.Address
	user.NomineeName = input.NomineeName
	user.DateOfBirth = input.DateOfBirth
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.record(ctx, user.ID, models.ActivityProfileUpdate, describeChanges(changes))
	return user, nil
}

func (s *service) Deactivate(ctx context.Context, username, password string) error {
	if err := s.VerifyPassword(ctx, username, password); err != nil {
		return err
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	// Terminal transition; nothing reactivates an INACTIVE user.
	user.AccountStatus = models.UserStatusInactive
	user.TokenVersion++
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.record(ctx, user.ID, models.ActivityAccountDeactivated, "User deactivated their account")
	return nil
}

// VerifyPassword re-runs the login credential check for a sensitive
// operation. It never reveals whether the user exists.
func (s *service) VerifyPassword(ctx context.Context, username, password string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return ErrAuthentication
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrAuthentication
	}
	return nil
}

// VerifyPin authorizes money movement. A missing PIN and a wrong PIN are
// different failures: the first needs setup, the second a retry.
func (s *service) VerifyPin(ctx context.Context, username, pin string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return ErrAuthentication
	}
	if user.Pin == nil {
		log.Printf("user %s attempted a transaction without a PIN set", username)
		return ErrPinNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Pin), []byte(pin)); err != nil {
		log.Printf("invalid PIN attempt for user %s", username)
		return ErrInvalidPin
	}
	return nil
}

func (s *service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *service) GetUserTokenVersion(ctx context.Context, id uint) (int, error) {
	return s.users.GetTokenVersion(ctx, id)
}

func (s *service) record(ctx context.Context, userID uint, activityType, description string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, userID, nil, activityType, description); err != nil {
		log.Printf("failed to record activity %s for user %d: %v", activityType, userID, err)
	}
}

func describeChanges(changes []string) string {
	if len(changes) == 1 {
		return "Updated " + changes[0]
	}
	return "Updated " + strings.Join(changes[:len(changes)-1], ", ") + ", and " + changes[len(changes)-1]
}

func equalDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
