package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/recipebox/recipebox-back/internal/apperr"
	"github.com/recipebox/recipebox-back/internal/db"
)

// EquipmentAssociation mirrors TagAssociation for equipment.
type EquipmentAssociation struct {
	Equipment *db.RecipeEquipment
	Created   bool
}

func (s *Service) EquipmentGet(user *db.User, equipmentID uint64) (*db.RecipeEquipment, error) {
	return s.findEquipment(s.db, user.ID, equipmentID)
}

func (s *Service) EquipmentAssociate(user *db.User, recipeID uint64, description string) (*EquipmentAssociation, error) {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return nil, err
	}

	if err := validateName("description", description); err != nil {
		return nil, err
	}

	equipment, created, err := s.getOrCreateEquipment(s.db, user.ID, description)
	if err != nil {
		return nil, err
	}

	if err := s.linkEquipment(s.db, recipe, equipment); err != nil {
		return nil, err
	}

	return &EquipmentAssociation{Equipment: equipment, Created: created}, nil
}

func (s *Service) EquipmentDissociate(user *db.User, equipmentID, recipeID uint64) error {
	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	equipment, err := s.findEquipment(s.db, user.ID, equipmentID)
	if err != nil {
		return err
	}

	linked, err := s.equipmentLinked(s.db, recipe.ID, equipment.ID)
	if err != nil {
		return err
	}
	if !linked {
		return apperr.NewNotFound("recipe equipment")
	}

	if err := s.db.Model(recipe).Association("Equipment").Delete(equipment); err != nil {
		return errors.Wrap(err, "unlink equipment")
	}
	return nil
}

func (s *Service) EquipmentDestroy(user *db.User, equipmentID uint64) error {
	equipment, err := s.findEquipment(s.db, user.ID, equipmentID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_recipe_equipment WHERE recipe_equipment_id = ?", equipment.ID).Error; err != nil {
			return errors.Wrap(err, "clear equipment links")
		}
		if err := tx.Delete(equipment).Error; err != nil {
			return errors.Wrap(err, "delete equipment")
		}
		return nil
	})
}

func (s *Service) EquipmentUpdate(user *db.User, equipmentID uint64, description string) (*db.RecipeEquipment, error) {
	if err := validateName("description", description); err != nil {
		return nil, err
	}

	equipment, err := s.findEquipment(s.db, user.ID, equipmentID)
	if err != nil {
		return nil, err
	}

	equipment.Description = description
	if err := s.db.Save(equipment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.NewValidation("description", "Equipment with that description already exists.")
		}
		return nil, errors.Wrap(err, "update equipment")
	}
	return equipment, nil
}

func (s *Service) EquipmentUpdateForRecipe(user *db.User, equipmentID, recipeID uint64, description string) error {
	if err := validateName("description", description); err != nil {
		return err
	}

	equipment, err := s.findEquipment(s.db, user.ID, equipmentID)
	if err != nil {
		return err
	}

	recipe, err := s.findRecipe(s.db, user.ID, recipeID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.replaceEquipmentForRecipe(tx, user.ID, recipe, equipment, description)
	})
}

func (s *Service) replaceEquipmentForRecipe(tx *gorm.DB, userID uint64, recipe *db.Recipe, old *db.RecipeEquipment, description string) error {
	if err := tx.Model(recipe).Association("Equipment").Delete(old); err != nil {
		return errors.Wrap(err, "unlink old equipment")
	}

	replacement, _, err := s.getOrCreateEquipment(tx, userID, description)
	if err != nil {
		return err
	}

	return s.linkEquipment(tx, recipe, replacement)
}

func (s *Service) EquipmentSearch(user *db.User, term string) ([]string, error) {
	return s.searchNamed(user.ID, "recipe_equipment", "description", term)
}

func (s *Service) findEquipment(tx *gorm.DB, userID, equipmentID uint64) (*db.RecipeEquipment, error) {
	equipment := db.RecipeEquipment{}
	res := tx.Where("id = ? AND user_id = ?", equipmentID, userID).First(&equipment)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("recipe equipment")
		}
		return nil, errors.Wrap(res.Error, "find equipment")
	}
	return &equipment, nil
}

func (s *Service) getOrCreateEquipment(tx *gorm.DB, userID uint64, description string) (*db.RecipeEquipment, bool, error) {
	equipment := db.RecipeEquipment{}
	res := tx.Where("user_id = ? AND LOWER(description) = LOWER(?)", userID, description).First(&equipment)
	if res.Error == nil {
		return &equipment, false, nil
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, false, errors.Wrap(res.Error, "find equipment by description")
	}

	equipment = db.RecipeEquipment{Description: description, UserID: userID}
	if err := tx.Create(&equipment).Error; err != nil {
		err = translateCreateErr(err, "equipment")
		if !apperr.IsConflict(err) {
			return nil, false, err
		}
		equipment = db.RecipeEquipment{}
		if err := tx.Where("user_id = ? AND LOWER(description) = LOWER(?)", userID, description).First(&equipment).Error; err != nil {
			return nil, false, errors.Wrap(err, "re-find equipment after conflict")
		}
		return &equipment, false, nil
	}
	return &equipment, true, nil
}

func (s *Service) equipmentLinked(tx *gorm.DB, recipeID, equipmentID uint64) (bool, error) {
	var n int64
	res := tx.Table("recipe_recipe_equipment").
		Where("recipe_id = ? AND recipe_equipment_id = ?", recipeID, equipmentID).
		Count(&n)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "count equipment links")
	}
	return n > 0, nil
}

func (s *Service) linkEquipment(tx *gorm.DB, recipe *db.Recipe, equipment *db.RecipeEquipment) error {
	linked, err := s.equipmentLinked(tx, recipe.ID, equipment.ID)
	if err != nil {
		return err
	}
	if linked {
		return nil
	}
	if err := tx.Model(recipe).Association("Equipment").Append(equipment); err != nil {
		return errors.Wrap(err, "link equipment")
	}
	return nil
}
