package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/recipebox/recipebox-back/internal/apperr"
	"github.com/recipebox/recipebox-back/internal/db"
)

// IngredientParams carries the free-text pieces of an ingredient. Brand and
// Unit are optional; Description is required. Each non-empty reference is
// normalized through get-or-create so the user never collects duplicates.
type IngredientParams struct {
	Amount      string
	Brand       string
	Description string
	Unit        string
}

func (s *Service) IngredientGet(user *db.User, ingredientID uint64) (*db.Ingredient, error) {
	ingredient := db.Ingredient{}
	res := s.db.
		Preload("Brand").
		Preload("Description").
		Preload("Unit").
		Joins("JOIN recipes ON recipes.id = ingredients.recipe_id").
		Where("ingredients.id = ? AND recipes.user_id = ?", ingredientID, user.ID).
		First(&ingredient)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("ingredient")
		}
		return nil, errors.Wrap(res.Error, "find ingredient")
	}
	return &ingredient, nil
}

// IngredientAssociate creates an ingredient row on the recipe, resolving
// brand, description and unit by name through their per-user stores.
func (s *Service) IngredientAssociate(user *db.User, recipeID uint64, params IngredientParams) (*db.Ingredient, error) {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return nil, err
	}

	if err := validateIngredientParams(params); err != nil {
		return nil, err
	}

	ingredient := &db.Ingredient{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		ingredient, err = s.buildIngredient(tx, user.ID, recipe.ID, params)
		if err != nil {
			return err
		}
		if err := tx.Create(ingredient).Error; err != nil {
			return errors.Wrap(err, "create ingredient")
		}
		return nil
	})
	if err != nil {
		if apperr.IsValidation(err) || apperr.IsNotFound(err) {
			return nil, err
		}
		s.logger.Errorw("ingredient could not be saved", "error", err)
		return nil, apperr.NewValidationMessage("Your information could not be saved.")
	}

	return s.IngredientGet(user, ingredient.ID)
}

// IngredientUpdate rewrites the ingredient with replace semantics: each
// reference re-resolves by name, never mutating the shared brand,
// description or unit rows in place.
func (s *Service) IngredientUpdate(user *db.User, ingredientID uint64, params IngredientParams) error {
	if err := validateIngredientParams(params); err != nil {
		return err
	}

	ingredient, err := s.IngredientGet(user, ingredientID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		replacement, err := s.buildIngredient(tx, user.ID, ingredient.RecipeID, params)
		if err != nil {
			return err
		}

		ingredient.Amount = replacement.Amount
		ingredient.BrandID = replacement.BrandID
		ingredient.Brand = nil
		ingredient.DescriptionID = replacement.DescriptionID
		ingredient.UnitID = replacement.UnitID
		ingredient.Unit = nil
		if err := tx.Omit("Brand", "Description", "Unit").Save(ingredient).Error; err != nil {
			return errors.Wrap(err, "update ingredient")
		}
		return nil
	})
}

func (s *Service) IngredientDestroy(user *db.User, ingredientID uint64) error {
	ingredient, err := s.IngredientGet(user, ingredientID)
	if err != nil {
		return err
	}

	// Brand, description and unit are referenced, not owned: they survive.
	if err := s.db.Delete(&db.Ingredient{}, ingredient.ID).Error; err != nil {
		return errors.Wrap(err, "delete ingredient")
	}
	return nil
}

func (s *Service) IngredientBrandSearch(user *db.User, term string) ([]string, error) {
	return s.searchNamed(user.ID, "ingredient_brands", "name", term)
}

func (s *Service) IngredientDescriptionSearch(user *db.User, term string) ([]string, error) {
	return s.searchNamed(user.ID, "ingredient_descriptions", "text", term)
}

func (s *Service) IngredientUnitSearch(user *db.User, term string) ([]string, error) {
	return s.searchNamed(user.ID, "ingredient_units", "name", term)
}

func validateIngredientParams(params IngredientParams) error {
	if err := validateName("description", params.Description); err != nil {
		return err
	}
	for field, value := range map[string]string{"brand": params.Brand, "unit": params.Unit} {
		if value != "" && len(value) > maxNameLength {
			return apperr.NewValidation(field, "Ensure this field has no more than 256 characters.")
		}
	}
	return nil
}

func (s *Service) buildIngredient(tx *gorm.DB, userID, recipeID uint64, params IngredientParams) (*db.Ingredient, error) {
	ingredient := db.Ingredient{
		Amount:   params.Amount,
		RecipeID: recipeID,
	}

	description, _, err := s.getOrCreateDescription(tx, userID, params.Description)
	if err != nil {
		return nil, err
	}
	ingredient.DescriptionID = description.ID

	if params.Brand != "" {
		brand, _, err := s.getOrCreateBrand(tx, userID, params.Brand)
		if err != nil {
			return nil, err
		}
		ingredient.BrandID = &brand.ID
	}

	if params.Unit != "" {
		unit, _, err := s.getOrCreateUnit(tx, userID, params.Unit)
		if err != nil {
			return nil, err
		}
		ingredient.UnitID = &unit.ID
	}

	return &ingredient, nil
}

func (s *Service) getOrCreateBrand(tx *gorm.DB, userID uint64, name string) (*db.IngredientBrand, bool, error) {
	brand := db.IngredientBrand{}
	res := tx.Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).First(&brand)
	if res.Error == nil {
		return &brand, false, nil
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, false, errors.Wrap(res.Error, "find brand by name")
	}

	brand = db.IngredientBrand{Name: name, UserID: userID}
	if err := tx.Create(&brand).Error; err != nil {
		err = translateCreateErr(err, "brand")
		if !apperr.IsConflict(err) {
			return nil, false, err
		}
		brand = db.IngredientBrand{}
		if err := tx.Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).First(&brand).Error; err != nil {
			return nil, false, errors.Wrap(err, "re-find brand after conflict")
		}
		return &brand, false, nil
	}
	return &brand, true, nil
}

func (s *Service) getOrCreateDescription(tx *gorm.DB, userID uint64, text string) (*db.IngredientDescription, bool, error) {
	description := db.IngredientDescription{}
	res := tx.Where("user_id = ? AND LOWER(text) = LOWER(?)", userID, text).First(&description)
	if res.Error == nil {
		return &description, false, nil
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, false, errors.Wrap(res.Error, "find description by text")
	}

	description = db.IngredientDescription{Text: text, UserID: userID}
	if err := tx.Create(&description).Error; err != nil {
		err = translateCreateErr(err, "description")
		if !apperr.IsConflict(err) {
			return nil, false, err
		}
		description = db.IngredientDescription{}
		if err := tx.Where("user_id = ? AND LOWER(text) = LOWER(?)", userID, text).First(&description).Error; err != nil {
			return nil, false, errors.Wrap(err, "re-find description after conflict")
		}
		return &description, false, nil
	}
	return &description, true, nil
}

func (s *Service) getOrCreateUnit(tx *gorm.DB, userID uint64, name string) (*db.IngredientUnit, bool, error) {
	unit := db.IngredientUnit{}
	res := tx.Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).First(&unit)
	if res.Error == nil {
		return &unit, false, nil
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, false, errors.Wrap(res.Error, "find unit by name")
	}

	unit = db.IngredientUnit{Name: name, UserID: userID}
	if err := tx.Create(&unit).Error; err != nil {
		err = translateCreateErr(err, "unit")
		if !apperr.IsConflict(err) {
			return nil, false, err
		}
		unit = db.IngredientUnit{}
		if err := tx.Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).First(&unit).Error; err != nil {
			return nil, false, errors.Wrap(err, "re-find unit after conflict")
		}
		return &unit, false, nil
	}
	return &unit, true, nil
}
