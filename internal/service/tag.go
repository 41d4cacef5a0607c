package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/recipebox/recipebox-back/internal/apperr"
	"github.com/recipebox/recipebox-back/internal/db"
)

// TagAssociation is the outcome of an associate call. Created tells the
// transport layer whether to answer 201 or 200.
type TagAssociation struct {
	Tag     *db.RecipeTag
	Created bool
}

func (s *Service) TagGet(user *db.User, tagID uint64) (*db.RecipeTag, error) {
	return s.findTag(s.db, user.ID, tagID)
}

// TagAssociate attaches a tag named name to the recipe, creating the tag
// lazily when the user has no tag with that name (case-insensitive).
// Re-associating an already-linked pair is a no-op.
func (s *Service) TagAssociate(user *db.User, recipeID uint64, name string) (*TagAssociation, error) {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return nil, err
	}

	if err := validateName("name", name); err != nil {
		return nil, err
	}

	tag, created, err := s.getOrCreateTag(s.db, user.ID, name)
	if err != nil {
		return nil, err
	}

	if err := s.linkTag(s.db, recipe, tag); err != nil {
		return nil, err
	}

	return &TagAssociation{Tag: tag, Created: created}, nil
}

// TagDissociate removes the link between tag and recipe. The tag itself
// survives; other recipes keep it.
func (s *Service) TagDissociate(user *db.User, tagID, recipeID uint64) error {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	tag, err := s.findTag(s.db, user.ID, tagID)
	if err != nil {
		return err
	}

	linked, err := s.tagLinked(s.db, recipe.ID, tag.ID)
	if err != nil {
		return err
	}
	if !linked {
		return apperr.NewNotFound("recipe tag")
	}

	if err := s.db.Model(recipe).Association("Tags").Delete(tag); err != nil {
		return errors.Wrap(err, "unlink tag")
	}
	return nil
}

// TagDestroy deletes the tag everywhere, dropping its links first.
func (s *Service) TagDestroy(user *db.User, tagID uint64) error {
	tag, err := s.findTag(s.db, user.ID, tagID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_recipe_tags WHERE recipe_tag_id = ?", tag.ID).Error; err != nil {
			return errors.Wrap(err, "clear tag links")
		}
		if err := tx.Delete(tag).Error; err != nil {
			return errors.Wrap(err, "delete tag")
		}
		return nil
	})
}

// TagUpdate renames the tag globally, for every recipe it is attached to.
// Per-recipe renames go through TagUpdateForRecipe instead.
func (s *Service) TagUpdate(user *db.User, tagID uint64, name string) (*db.RecipeTag, error) {
	if err := validateName("name", name); err != nil {
		return nil, err
	}

	tag, err := s.findTag(s.db, user.ID, tagID)
	if err != nil {
		return nil, err
	}

	tag.Name = name
	if err := s.db.Save(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.NewValidation("name", "A tag with that name already exists.")
		}
		return nil, errors.Wrap(err, "update tag")
	}
	return tag, nil
}

// TagUpdateForRecipe renames a tag as attached to one recipe: detach the
// old one, get-or-create the new name, attach it. The three steps run in a
// single transaction so the recipe never transiently loses or duplicates
// tags.
func (s *Service) TagUpdateForRecipe(user *db.User, tagID, recipeID uint64, name string) error {
	if err := validateName("name", name); err != nil {
		return err
	}

	tag, err := s.findTag(s.db, user.ID, tagID)
	if err != nil {
		return err
	}

	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.replaceTagForRecipe(tx, user.ID, recipe, tag, name)
	})
}

// replaceTagForRecipe is the transaction body for TagUpdateForRecipe,
// separated so tests can exercise rollback behavior.
func (s *Service) replaceTagForRecipe(tx *gorm.DB, userID uint64, recipe *db.Recipe, old *db.RecipeTag, name string) error {
	if err := tx.Model(recipe).Association("Tags").Delete(old); err != nil {
		return errors.Wrap(err, "unlink old tag")
	}

	replacement, _, err := s.getOrCreateTag(tx, userID, name)
	if err != nil {
		return err
	}

	return s.linkTag(tx, recipe, replacement)
}

func (s *Service) TagSearch(user *db.User, term string) ([]string, error) {
	return s.searchNamed(user.ID, "recipe_tags", "name", term)
}

func (s *Service) findTag(tx *gorm.DB, userID, tagID uint64) (*db.RecipeTag, error) {
	tag := db.RecipeTag{}
	res := tx.Where("id = ? AND user_id = ?", tagID, userID).First(&tag)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("recipe tag")
		}
		return nil, errors.Wrap(res.Error, "find tag")
	}
	return &tag, nil
}

// getOrCreateTag looks the name up case-insensitively before inserting. A
// concurrent insert of the same name loses to the unique constraint and is
// recovered by re-running the lookup, which then finds the winner's row.
func (s *Service) getOrCreateTag(tx *gorm.DB, userID uint64, name string) (*db.RecipeTag, bool, error) {
	tag := db.RecipeTag{}
	res := tx.Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).First(&tag)
	if res.Error == nil {
		return &tag, false, nil
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, false, errors.Wrap(res.Error, "find tag by name")
	}

	tag = db.RecipeTag{Name: name, UserID: userID}
	if err := tx.Create(&tag).Error; err != nil {
		err = translateCreateErr(err, "tag")
		if !apperr.IsConflict(err) {
			return nil, false, err
		}
		tag = db.RecipeTag{}
		if err := tx.Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).First(&tag).Error; err != nil {
			return nil, false, errors.Wrap(err, "re-find tag after conflict")
		}
		return &tag, false, nil
	}
	return &tag, true, nil
}

func (s *Service) tagLinked(tx *gorm.DB, recipeID, tagID uint64) (bool, error) {
	var n int64
	res := tx.Table("recipe_recipe_tags").
		Where("recipe_id = ? AND recipe_tag_id = ?", recipeID, tagID).
		Count(&n)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "count tag links")
	}
	return n > 0, nil
}

func (s *Service) linkTag(tx *gorm.DB, recipe *db.Recipe, tag *db.RecipeTag) error {
	linked, err := s.tagLinked(tx, recipe.ID, tag.ID)
	if err != nil {
		return err
	}
	if linked {
		return nil
	}
	if err := tx.Model(recipe).Association("Tags").Append(tag); err != nil {
		return errors.Wrap(err, "link tag")
	}
	return nil
}
