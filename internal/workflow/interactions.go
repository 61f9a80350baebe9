package workflow

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"herald/internal/auth"
	"herald/internal/fault"
	"herald/internal/models"
)

// LikeResult reports the caller's like state and the article's total after
// the toggle.
type LikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes_count"`
}

// ShareResult reports the article's share total. Repeat shares by the same
// user are counted once.
type ShareResult struct {
	Shared bool  `json:"shared"`
	Shares int64 `json:"shares_count"`
}

// Like toggles the caller's like on an article. A concurrent duplicate insert
// is absorbed by the unique index and reported as already liked.
func (s *Service) Like(ctx context.Context, caller auth.Identity, articleID uuid.UUID) (*LikeResult, error) {
	if caller.IsAnonymous() {
		return nil, fault.New(fault.Unauthenticated, "sign in to like articles")
	}
	if _, err := s.load(ctx, articleID); err != nil {
		return nil, err
	}

	liked := false
	err := s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Interaction
		err := tx.First(&existing,
			"user_id = ? AND article_id = ? AND type = ?",
			caller.UserID, articleID, models.InteractionLiked).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			err := tx.Create(&models.Interaction{
				UserID:    caller.UserID,
				ArticleID: articleID,
				Type:      models.InteractionLiked,
			}).Error
			if err != nil && isUniqueViolation(err) {
				return nil
			}
			return err
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	likes, err := s.countInteractions(ctx, articleID, models.InteractionLiked)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, Likes: likes}, nil
}

// Share records that the caller shared an article, at most once per user.
func (s *Service) Share(ctx context.Context, caller auth.Identity, articleID uuid.UUID) (*ShareResult, error) {
	if caller.IsAnonymous() {
		return nil, fault.New(fault.Unauthenticated, "sign in to share articles")
	}
	if _, err := s.load(ctx, articleID); err != nil {
		return nil, err
	}

	err := s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Interaction
		err := tx.First(&existing,
			"user_id = ? AND article_id = ? AND type = ?",
			caller.UserID, articleID, models.InteractionShared).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		err = tx.Create(&models.Interaction{
			UserID:    caller.UserID,
			ArticleID: articleID,
			Type:      models.InteractionShared,
		}).Error
		if err != nil && isUniqueViolation(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	shares, err := s.countInteractions(ctx, articleID, models.InteractionShared)
	if err != nil {
		return nil, err
	}
	return &ShareResult{Shared: true, Shares: shares}, nil
}

func (s *Service) countInteractions(ctx context.Context, articleID uuid.UUID, kind string) (int64, error) {
	var n int64
	err := s.orm.WithContext(ctx).Model(&models.Interaction{}).
		Where("article_id = ? AND type = ?", articleID, kind).
		Count(&n).Error
	return n, err
}
