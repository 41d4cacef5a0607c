package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/recipebox/recipebox-back/internal/config"
)

const (
	TokenCategoryEmailConfirmation = "email_confirmation"

	TimeTypeAdditional  = "Additional"
	TimeTypeCook        = "Cook"
	TimeTypePreparation = "Preparation"
	TimeTypeTotal       = "Total"
)

// TimeTypes lists the accepted RecipeTime categories.
var TimeTypes = []string{TimeTypeAdditional, TimeTypeCook, TimeTypePreparation, TimeTypeTotal}

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Username         string `gorm:"size:150;unique;not null"`
		Email            string `gorm:"not null"`
		PasswordHash     string `gorm:"not null"`
		IsActive         bool   `gorm:"not null;default:false"`
		EmailConfirmedAt *time.Time
		SessionToken     string `gorm:"index"`
		Recipes          []Recipe                `gorm:"constraint:OnDelete:CASCADE"`
		Tags             []RecipeTag             `gorm:"constraint:OnDelete:CASCADE"`
		Equipment        []RecipeEquipment       `gorm:"constraint:OnDelete:CASCADE"`
		Brands           []IngredientBrand       `gorm:"constraint:OnDelete:CASCADE"`
		Descriptions     []IngredientDescription `gorm:"constraint:OnDelete:CASCADE"`
		Units            []IngredientUnit        `gorm:"constraint:OnDelete:CASCADE"`
		Tokens           []Token                 `gorm:"constraint:OnDelete:CASCADE"`
	}

	Recipe struct {
		GormForkedModel
		Title       string `gorm:"size:256;not null"`
		Notes       string
		Rating      *int
		Servings    *float64 `gorm:"type:decimal(5,2)"`
		UserID      uint64   `gorm:"not null"`
		User        User
		Tags        []RecipeTag       `gorm:"many2many:recipe_recipe_tags;constraint:OnDelete:CASCADE"`
		Equipment   []RecipeEquipment `gorm:"many2many:recipe_recipe_equipment;constraint:OnDelete:CASCADE"`
		Times       []RecipeTime      `gorm:"constraint:OnDelete:CASCADE"`
		Ingredients []Ingredient      `gorm:"constraint:OnDelete:CASCADE"`
	}

	RecipeTag struct {
		GormForkedModel
		Name    string   `gorm:"size:256;not null;uniqueIndex:uidx_tag_name_user_id"`
		UserID  uint64   `gorm:"not null;uniqueIndex:uidx_tag_name_user_id"`
		User    User
		Recipes []Recipe `gorm:"many2many:recipe_recipe_tags;"`
	}

	RecipeEquipment struct {
		GormForkedModel
		Description string   `gorm:"size:256;not null;uniqueIndex:uidx_equipment_description_user_id"`
		UserID      uint64   `gorm:"not null;uniqueIndex:uidx_equipment_description_user_id"`
		User        User
		Recipes     []Recipe `gorm:"many2many:recipe_recipe_equipment;"`
	}

	RecipeTime struct {
		GormForkedModel
		TimeType string `gorm:"size:20;not null"`
		Days     *int
		Hours    *int
		Minutes  *int
		Note     string
		RecipeID uint64 `gorm:"not null"`
		Recipe   Recipe
	}

	IngredientBrand struct {
		GormForkedModel
		Name   string `gorm:"size:256;not null;uniqueIndex:uidx_brand_name_user_id"`
		UserID uint64 `gorm:"not null;uniqueIndex:uidx_brand_name_user_id"`
		User   User
	}

	IngredientDescription struct {
		GormForkedModel
		Text   string `gorm:"size:256;not null;uniqueIndex:uidx_description_text_user_id"`
		UserID uint64 `gorm:"not null;uniqueIndex:uidx_description_text_user_id"`
		User   User
	}

	IngredientUnit struct {
		GormForkedModel
		Name   string `gorm:"size:256;not null;uniqueIndex:uidx_unit_name_user_id"`
		UserID uint64 `gorm:"not null;uniqueIndex:uidx_unit_name_user_id"`
		User   User
	}

	Ingredient struct {
		GormForkedModel
		Amount        string
		RecipeID      uint64 `gorm:"not null"`
		Recipe        Recipe
		BrandID       *uint64
		Brand         *IngredientBrand
		DescriptionID uint64 `gorm:"not null"`
		Description   IngredientDescription
		UnitID        *uint64
		Unit          *IngredientUnit
	}

	// Token is a single-use credential. Rows are created on signup and
	// deleted on every terminal confirmation path, never updated.
	Token struct {
		GormForkedModel
		Category   string `gorm:"size:32;not null"`
		Value      string `gorm:"size:256;unique;not null"`
		Expiration time.Time
		UserID     uint64 `gorm:"not null"`
		User       User
	}
)

// AllModels is the AutoMigrate order; parents precede children.
var AllModels = []interface{}{
	&User{},
	&Recipe{},
	&RecipeTag{},
	&RecipeEquipment{},
	&RecipeTime{},
	&IngredientBrand{},
	&IngredientDescription{},
	&IngredientUnit{},
	&Ingredient{},
	&Token{},
}

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Info,
		Colorful:                  true,
		IgnoreRecordNotFoundError: false,
	})

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	for _, model := range AllModels {
		if err := db.AutoMigrate(model); err != nil {
			return errors.Wrapf(err, "migrate %T", model)
		}
	}
	return nil
}
