package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/recipebox/recipebox-back/internal/apperr"
	"github.com/recipebox/recipebox-back/internal/db"
)

// RecipeTimeParams is the mutable shape of a recipe time. Unit fields are
// pointers so "unset" survives the trip from the transport layer.
type RecipeTimeParams struct {
	TimeType string
	Days     *int
	Hours    *int
	Minutes  *int
	Note     string
}

func (s *Service) RecipeTimeGet(user *db.User, timeID uint64) (*db.RecipeTime, error) {
	return s.findRecipeTime(user.ID, timeID)
}

func (s *Service) RecipeTimeCreate(user *db.User, recipeID uint64, params RecipeTimeParams) (*db.RecipeTime, error) {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return nil, err
	}

	if err := validateTimeParams(params); err != nil {
		return nil, err
	}

	recipeTime := db.RecipeTime{
		TimeType: params.TimeType,
		Days:     params.Days,
		Hours:    params.Hours,
		Minutes:  params.Minutes,
		Note:     params.Note,
		RecipeID: recipe.ID,
	}
	if err := s.db.Create(&recipeTime).Error; err != nil {
		return nil, errors.Wrap(err, "create recipe time")
	}
	return &recipeTime, nil
}

// RecipeTimeUpdate replaces the whole time row; partial edits come in with
// the unchanged fields filled.
func (s *Service) RecipeTimeUpdate(user *db.User, timeID uint64, params RecipeTimeParams) error {
	recipeTime, err := s.findRecipeTime(user.ID, timeID)
	if err != nil {
		return err
	}

	if err := validateTimeParams(params); err != nil {
		return err
	}

	recipeTime.TimeType = params.TimeType
	recipeTime.Days = params.Days
	recipeTime.Hours = params.Hours
	recipeTime.Minutes = params.Minutes
	recipeTime.Note = params.Note
	if err := s.db.Save(recipeTime).Error; err != nil {
		return errors.Wrap(err, "update recipe time")
	}
	return nil
}

func (s *Service) RecipeTimeDestroy(user *db.User, timeID uint64) error {
	recipeTime, err := s.findRecipeTime(user.ID, timeID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(recipeTime).Error; err != nil {
		return errors.Wrap(err, "delete recipe time")
	}
	return nil
}

// findRecipeTime scopes the lookup through the parent recipe's owner.
func (s *Service) findRecipeTime(userID, timeID uint64) (*db.RecipeTime, error) {
	recipeTime := db.RecipeTime{}
	res := s.db.
		Joins("JOIN recipes ON recipes.id = recipe_times.recipe_id").
		Where("recipe_times.id = ? AND recipes.user_id = ?", timeID, userID).
		First(&recipeTime)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("recipe time")
		}
		return nil, errors.Wrap(res.Error, "find recipe time")
	}
	return &recipeTime, nil
}

func validateTimeParams(params RecipeTimeParams) error {
	valid := false
	for _, timeType := range db.TimeTypes {
		if params.TimeType == timeType {
			valid = true
			break
		}
	}
	if !valid {
		return apperr.NewValidation("time_type", "Select a valid choice.")
	}

	for field, unit := range map[string]*int{"days": params.Days, "hours": params.Hours, "minutes": params.Minutes} {
		if unit != nil && *unit < 0 {
			return apperr.NewValidation(field, "Ensure this value is greater than or equal to 0.")
		}
	}

	// Zero counts as unset, matching the original's falsy-value pruning.
	if !timeUnitSet(params.Days) && !timeUnitSet(params.Hours) && !timeUnitSet(params.Minutes) {
		err := &apperr.ValidationError{
			Message: "The information you provided was invalid.",
			Fields:  map[string][]string{},
		}
		for _, field := range []string{"days", "hours", "minutes"} {
			err.Fields[field] = []string{"At least one unit is required."}
		}
		return err
	}

	return nil
}

func timeUnitSet(unit *int) bool {
	return unit != nil && *unit > 0
}
