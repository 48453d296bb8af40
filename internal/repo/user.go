package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

type UserFilter struct {
	Search string
	Role   models.Role
	Active *bool
}

func (r *GormRepo) FindUser(ctx context.Context, id uint) (*models.User, error) {
	return firstOrNil(r.DB.WithContext(ctx).Where("id = ?", id), &models.User{})
}

func (r *GormRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return firstOrNil(r.DB.WithContext(ctx).Where("username = ?", username), &models.User{})
}

func (r *GormRepo) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(username) LIKE ? ESCAPE '\')`, p, p)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}

	items := make([]models.User, 0)
	if err := q.Order("name ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) UsernameExists(ctx context.Context, username string, excludeID uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

// UpdateUser writes profile fields; the password hash only when non-empty.
func (r *GormRepo) UpdateUser(ctx context.Context, u *models.User) error {
	fields := map[string]any{"username": u.Username, "name": u.Name, "role": u.Role}
	if u.PasswordHash != "" {
		fields["password_hash"] = u.PasswordHash
	}
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SetUserActive(ctx context.Context, id uint, active bool) error {
	return setActive(r.DB.WithContext(ctx), &models.User{}, id, active)
}
