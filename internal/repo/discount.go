package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

type DiscountFilter struct {
	Search string
	Active *bool
}

func (r *GormRepo) FindDiscount(ctx context.Context, id uint) (*models.Discount, error) {
	return firstOrNil(r.DB.WithContext(ctx).Where("id = ?", id), &models.Discount{})
}

// FindActiveDiscountByCode expects an already normalized (upper-case) code.
func (r *GormRepo) FindActiveDiscountByCode(ctx context.Context, code string) (*models.Discount, error) {
	return firstOrNil(r.DB.WithContext(ctx).Where("code = ? AND active = ?", code, true), &models.Discount{})
}

func (r *GormRepo) ListDiscounts(ctx context.Context, f DiscountFilter) ([]models.Discount, error) {
	q := r.DB.WithContext(ctx).Model(&models.Discount{})
	if f.Search != "" {
		q = q.Where(`LOWER(code) LIKE ? ESCAPE '\'`, likePattern(f.Search))
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}

	items := make([]models.Discount, 0)
	if err := q.Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DiscountCodeExists compares case-insensitively; excludeID skips the record being edited.
func (r *GormRepo) DiscountCodeExists(ctx context.Context, code string, excludeID uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.Discount{}).Where("UPPER(code) = UPPER(?)", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateDiscount(ctx context.Context, d *models.Discount) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *GormRepo) UpdateDiscount(ctx context.Context, d *models.Discount) error {
	res := r.DB.WithContext(ctx).Model(&models.Discount{}).Where("id = ?", d.ID).
		Updates(map[string]any{"code": d.Code, "kind": d.Kind, "value": d.Value})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SetDiscountActive(ctx context.Context, id uint, active bool) error {
	return setActive(r.DB.WithContext(ctx), &models.Discount{}, id, active)
}
