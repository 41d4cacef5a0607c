package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/recipebox/recipebox-back/internal/apperr"
	"github.com/recipebox/recipebox-back/internal/db"
)

func (s *Service) RecipeList(user *db.User) ([]db.Recipe, error) {
	recipes := make([]db.Recipe, 0)
	res := s.db.Where("user_id = ?", user.ID).Order("id").Find(&recipes)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "list recipes")
	}
	return recipes, nil
}

// RecipeGet loads the recipe with all attached metadata.
func (s *Service) RecipeGet(user *db.User, recipeID uint64) (*db.Recipe, error) {
	recipe := db.Recipe{}
	res := s.db.
		Preload("Tags").
		Preload("Equipment").
		Preload("Times").
		Preload("Ingredients").
		Preload("Ingredients.Brand").
		Preload("Ingredients.Description").
		Preload("Ingredients.Unit").
		Where("id = ? AND user_id = ?", recipeID, user.ID).
		First(&recipe)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("recipe")
		}
		return nil, errors.Wrap(res.Error, "get recipe")
	}
	return &recipe, nil
}

func (s *Service) RecipeCreate(user *db.User, title string) (*db.Recipe, error) {
	if err := validateName("title", title); err != nil {
		return nil, err
	}

	recipe := db.Recipe{Title: title, UserID: user.ID}
	if err := s.db.Create(&recipe).Error; err != nil {
		return nil, errors.Wrap(err, "create recipe")
	}
	return &recipe, nil
}

func (s *Service) RecipeTitleUpdate(user *db.User, recipeID uint64, title string) error {
	if err := validateName("title", title); err != nil {
		return err
	}

	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	recipe.Title = title
	if err := s.db.Save(recipe).Error; err != nil {
		return errors.Wrap(err, "update title")
	}
	return nil
}

func (s *Service) RecipeNotesGet(user *db.User, recipeID uint64) (string, error) {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return "", err
	}
	return recipe.Notes, nil
}

func (s *Service) RecipeNotesUpdate(user *db.User, recipeID uint64, notes string) error {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	recipe.Notes = notes
	if err := s.db.Save(recipe).Error; err != nil {
		return errors.Wrap(err, "update notes")
	}
	return nil
}

func (s *Service) RecipeNotesDestroy(user *db.User, recipeID uint64) error {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	res := s.db.Model(recipe).Update("notes", "")
	if res.Error != nil {
		return errors.Wrap(res.Error, "clear notes")
	}
	return nil
}

func (s *Service) RecipeRatingGet(user *db.User, recipeID uint64) (*int, error) {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return nil, err
	}
	return recipe.Rating, nil
}

func (s *Service) RecipeRatingUpdate(user *db.User, recipeID uint64, rating int) error {
	if rating < 1 || rating > 5 {
		return apperr.NewValidation("rating", "Ensure this value is between 1 and 5.")
	}

	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	res := s.db.Model(recipe).Update("rating", rating)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update rating")
	}
	return nil
}

func (s *Service) RecipeRatingDestroy(user *db.User, recipeID uint64) error {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	res := s.db.Model(recipe).Update("rating", nil)
	if res.Error != nil {
		return errors.Wrap(res.Error, "clear rating")
	}
	return nil
}

func (s *Service) RecipeServingsGet(user *db.User, recipeID uint64) (*float64, error) {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return nil, err
	}
	return recipe.Servings, nil
}

func (s *Service) RecipeServingsUpdate(user *db.User, recipeID uint64, servings float64) error {
	if servings < 0 {
		return apperr.NewValidation("servings", "Ensure this value is greater than or equal to 0.")
	}

	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	res := s.db.Model(recipe).Update("servings", servings)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update servings")
	}
	return nil
}

func (s *Service) RecipeServingsDestroy(user *db.User, recipeID uint64) error {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	res := s.db.Model(recipe).Update("servings", nil)
	if res.Error != nil {
		return errors.Wrap(res.Error, "clear servings")
	}
	return nil
}
