package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	if s.Cart == nil {
		s.Cart = models.Cart{}
	}
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) FindSession(ctx context.Context, id string) (*models.Session, error) {
	return firstOrNil(r.DB.WithContext(ctx).Where("id = ?", id), &models.Session{})
}

// SaveSession overwrites the mutable state of an existing session.
func (r *GormRepo) SaveSession(ctx context.Context, s *models.Session) error {
	if s.Cart == nil {
		s.Cart = models.Cart{}
	}
	res := r.DB.WithContext(ctx).Model(s).
		Select("cart", "discount_code", "last_order_id", "updated_at").
		Updates(s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteSession(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}
