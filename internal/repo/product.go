package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

type ProductFilter struct {
	Category string
	Active   *bool
	Search   string
	Limit    int
}

func (r *GormRepo) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	return firstOrNil(r.DB.WithContext(ctx).Where("id = ?", id), &models.Product{})
}

func (r *GormRepo) ProductsByID(ctx context.Context, ids []uint) (map[uint]*models.Product, error) {
	out := make(map[uint]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for i := range items {
		out[items[i].ID] = &items[i]
	}
	return out, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`, p, p)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	items := make([]models.Product, 0)
	if err := q.Order("category ASC").Order("name ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ProductCategories(ctx context.Context) ([]string, error) {
	cats := make([]string, 0)
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("active = ?", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).
		Updates(map[string]any{"name": p.Name, "price": p.Price, "category": p.Category})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SetProductActive(ctx context.Context, id uint, active bool) error {
	return setActive(r.DB.WithContext(ctx), &models.Product{}, id, active)
}
