// Package service holds the application core: recipe CRUD, the
// association/search-and-normalize mechanics for user-scoped named entities,
// and the signup-confirmation pipeline. All operations return typed errors
// from apperr; the transport layer maps them to HTTP statuses.
package service

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/recipebox/recipebox-back/internal/apperr"
	"github.com/recipebox/recipebox-back/internal/config"
	"github.com/recipebox/recipebox-back/internal/db"
)

const maxNameLength = 256

// SignupConfirmationDispatcher hands a confirmation email off to an
// asynchronous worker. Implementations must not block the caller on
// delivery.
type SignupConfirmationDispatcher interface {
	DispatchSignupConfirmation(userID uint64, siteURI, confirmationURI string)
}

type Service struct {
	db            *gorm.DB
	logger        *zap.SugaredLogger
	confirmations SignupConfirmationDispatcher
	clientBaseURL string
	siteTitle     string
}

func New(gdb *gorm.DB, logger *zap.SugaredLogger, cfg *config.Config, confirmations SignupConfirmationDispatcher) *Service {
	return &Service{
		db:            gdb,
		logger:        logger,
		confirmations: confirmations,
		clientBaseURL: strings.TrimRight(cfg.ClientBaseURL, "/"),
		siteTitle:     cfg.SiteTitle,
	}
}

func (s *Service) findRecipe(tx *gorm.DB, userID, recipeID uint64) (*db.Recipe, error) {
	recipe := db.Recipe{}
	res := tx.Where("id = ? AND user_id = ?", recipeID, userID).First(&recipe)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("recipe")
		}
		return nil, errors.Wrap(res.Error, "find recipe")
	}
	return &recipe, nil
}

// validateName guards the shared constraint on named-entity values: not
// blank after trimming, at most maxNameLength characters.
func validateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.NewValidation(field, "This field may not be blank.")
	}
	if len(value) > maxNameLength {
		return apperr.NewValidation(field, fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength))
	}
	return nil
}

// translateCreateErr converts a storage-level unique violation into a
// ConflictError so callers can recover by retrying the insert as a lookup.
func translateCreateErr(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperr.ConflictError{Err: err}
	}
	return errors.Wrap(err, "create "+what)
}
