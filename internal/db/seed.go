// Package db seeds baseline rows the application expects to exist.
package db

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"herald/internal/auth"
	"herald/internal/models"
	"herald/internal/workflow"
)

//go:embed seed/categories.yaml
var seedCategories []byte

type seedData struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"categories"`
}

// Seed inserts the default categories and, when configured, a bootstrap
// admin account. Existing rows are left untouched.
func Seed(ctx context.Context, database *gorm.DB, adminEmail, adminPassword string) error {
	var data seedData
	if err := yaml.Unmarshal(seedCategories, &data); err != nil {
		return err
	}

	for _, c := range data.Categories {
		category := models.Category{
			Name:        c.Name,
			Slug:        workflow.Slugify(c.Name),
			Description: c.Description,
		}
		if err := database.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&category).Error; err != nil {
			return err
		}
	}

	if adminEmail == "" || adminPassword == "" {
		return nil
	}
	return seedAdmin(ctx, database, adminEmail, adminPassword)
}

func seedAdmin(ctx context.Context, database *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.User
	err := database.WithContext(ctx).First(&existing, "email = ?", email).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	return database.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&admin).Error
}
