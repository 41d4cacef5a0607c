package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/recipebox/recipebox-back/internal/apperr"
	"github.com/recipebox/recipebox-back/internal/db"
)

const (
	confirmationTokenTTL = 24 * time.Hour

	// OWASP recommends 128-bit minimum for session identifiers; the same
	// floor applies to confirmation tokens.
	confirmationTokenBytes = 128 / 8

	bcryptCost        = 14
	minPasswordLength = 8
	maxUsernameLength = 150
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var (
	ErrLoginUserNotFound         = errors.New("user not found")
	ErrLoginPasswordDoesNotMatch = errors.New("password does not match")
)

// Signup creates an inactive user, issues a 24-hour confirmation token and
// hands delivery off to the asynchronous dispatcher. The caller gets a
// response before any email leaves the building.
func (s *Service) Signup(username, email, password string) (*db.User, error) {
	if err := validateSignup(username, email, password); err != nil {
		return nil, err
	}

	var n int64
	if err := s.db.Model(&db.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return nil, errors.Wrap(err, "check username")
	}
	if n > 0 {
		return nil, apperr.NewValidation("username", "That username already exists.")
	}
	if err := s.db.Model(&db.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, errors.Wrap(err, "check email")
	}
	if n > 0 {
		return nil, apperr.NewValidation("email", "That email address is already in use.")
	}

	hash, err := s.bcryptGen(password)
	if err != nil {
		return nil, errors.Wrap(err, "bcryptGen")
	}

	user := db.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     false,
	}

	tokenValue, err := buildTokenValue()
	if err != nil {
		return nil, errors.Wrap(err, "build token")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.NewValidation("username", "That username already exists.")
			}
			return errors.Wrap(err, "create user")
		}

		token := db.Token{
			Category:   db.TokenCategoryEmailConfirmation,
			Value:      tokenValue,
			Expiration: time.Now().Add(confirmationTokenTTL),
			UserID:     user.ID,
		}
		if err := tx.Create(&token).Error; err != nil {
			return errors.Wrap(err, "create token")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("created new user", "user_id", user.ID)

	siteURI := s.clientBaseURL
	confirmationURI := fmt.Sprintf("%s/signup_confirmation/%s", s.clientBaseURL, tokenValue)

	s.logger.Infow("dispatching signup confirmation", "user_id", user.ID)
	s.confirmations.DispatchSignupConfirmation(user.ID, siteURI, confirmationURI)

	return &user, nil
}

// ConfirmSignup consumes a confirmation token. The token row is deleted on
// every terminal path, so a second attempt with the same value always comes
// back invalid, never expired.
func (s *Service) ConfirmSignup(tokenValue string) error {
	if tokenValue == "" {
		return apperr.NewValidation("token", "This field may not be blank.")
	}

	token := db.Token{}
	res := s.db.Where("value = ?", tokenValue).First(&token)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return apperr.NewValidationMessage("The confirmation ID you provided was invalid.")
		}
		return errors.Wrap(res.Error, "find token")
	}

	now := time.Now()

	if token.Expiration.Before(now) {
		if err := s.db.Delete(&db.Token{}, token.ID).Error; err != nil {
			return errors.Wrap(err, "delete expired token")
		}
		return apperr.NewValidationMessage("The confirmation ID you provided was expired.")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&db.Token{}, token.ID).Error; err != nil {
			return errors.Wrap(err, "delete token")
		}
		res := tx.Model(&db.User{}).Where("id = ?", token.UserID).Updates(map[string]interface{}{
			"is_active":          true,
			"email_confirmed_at": now,
		})
		if res.Error != nil {
			return errors.Wrap(res.Error, "activate user")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Infow("set user to active", "user_id", token.UserID)
	return nil
}

// Login authenticates a user by username and password and rotates their
// session token. Inactive accounts fail the same way bad credentials do.
func (s *Service) Login(username, password string) (*db.User, error) {
	user := db.User{}
	res := s.db.Where("username = ?", username).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrLoginUserNotFound
		}
		return nil, errors.Wrap(res.Error, "find user")
	}

	if !user.IsActive {
		return nil, ErrLoginUserNotFound
	}

	if err := s.bcryptCheck(user.PasswordHash, password); err != nil {
		return nil, ErrLoginPasswordDoesNotMatch
	}

	sessionToken := uuid.New().String()
	res = s.db.Model(&user).Update("session_token", sessionToken)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update session token")
	}
	user.SessionToken = sessionToken

	return &user, nil
}

func (s *Service) Logout(user *db.User) error {
	res := s.db.Model(user).Update("session_token", "")
	if res.Error != nil {
		return errors.Wrap(res.Error, "clear session token")
	}
	return nil
}

// UserBySessionToken resolves the authenticated user for the middleware.
func (s *Service) UserBySessionToken(token string) (*db.User, error) {
	if token == "" {
		return nil, apperr.NewNotFound("user")
	}
	user := db.User{}
	res := s.db.Where("session_token = ? AND is_active = ?", token, true).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("user")
		}
		return nil, errors.Wrap(res.Error, "find user by session token")
	}
	return &user, nil
}

// AccountDestroy deletes the account after re-checking the password.
func (s *Service) AccountDestroy(user *db.User, password string) error {
	s.logger.Infow("checking password", "user_id", user.ID)

	if err := s.bcryptCheck(user.PasswordHash, password); err != nil {
		s.logger.Errorw("invalid password given", "user_id", user.ID)
		return apperr.NewForbidden("Invalid password.")
	}

	s.logger.Infow("deleting account", "user_id", user.ID, "username", user.Username)

	if err := s.db.Delete(&db.User{}, user.ID).Error; err != nil {
		return errors.Wrap(err, "delete user")
	}
	return nil
}

func validateSignup(username, email, password string) error {
	if username == "" {
		return apperr.NewValidation("username", "This field may not be blank.")
	}
	if len(username) > maxUsernameLength {
		return apperr.NewValidation("username", fmt.Sprintf("Ensure this field has no more than %d characters.", maxUsernameLength))
	}
	if email == "" {
		return apperr.NewValidation("email", "This field may not be blank.")
	}
	if !emailPattern.MatchString(email) {
		return apperr.NewValidation("email", "Enter a valid email address.")
	}
	if len(password) < minPasswordLength {
		return apperr.NewValidation("password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLength))
	}
	return nil
}

func buildTokenValue() (string, error) {
	b := make([]byte, confirmationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Service) bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (s *Service) bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}
