package workflow

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"herald/internal/models"
)

// findOrCreateCategory returns the category with the given name, creating it
// when missing. A concurrent insert racing the create is resolved by the
// unique index and a second lookup.
func findOrCreateCategory(tx *gorm.DB, name string) (*models.Category, error) {
	slug := Slugify(name)

	var category models.Category
	err := tx.First(&category, "slug = ?", slug).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = models.Category{Name: name, Slug: slug}
	err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error
	if err != nil {
		return nil, err
	}
	if category.ID == uuid.Nil {
		// OnConflict skipped the insert; someone else won the race.
		if err := tx.First(&category, "slug = ?", slug).Error; err != nil {
			return nil, err
		}
	}
	return &category, nil
}

// findOrCreateTags resolves a normalized tag-name list to tag rows, creating
// the missing ones. Order of the input is preserved.
func findOrCreateTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		slug := Slugify(name)

		var tag models.Tag
		err := tx.First(&tag, "slug = ?", slug).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name, Slug: slug}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
				return nil, err
			}
			if tag.ID == uuid.Nil {
				if err := tx.First(&tag, "slug = ?", slug).Error; err != nil {
					return nil, err
				}
			}
		} else if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
