package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

func itemsByID(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

// CreateOrder inserts the header and every line in one transaction. A clash on
// the order number comes back as gorm.ErrDuplicatedKey.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		order.ID = 0
		if IsDuplicate(err) {
			return gorm.ErrDuplicatedKey
		}
		return err
	}
	return nil
}

func (r *GormRepo) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	return firstOrNil(r.DB.WithContext(ctx).Preload("Items", itemsByID).Where("id = ?", id), &models.Order{})
}

// UpdateOrderStatus returns the number of rows touched; zero is not an error.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected, res.Error
}

// MarkOrderReady sets status ready together with the whole seconds elapsed
// between the order's creation and now. For an unknown id it degrades to a
// plain status update, which touches nothing.
func (r *GormRepo) MarkOrderReady(ctx context.Context, id uint, now time.Time) (int64, error) {
	var rows int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		err := tx.Select("id", "created_at").Where("id = ?", id).Take(&o).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			res := tx.Model(&models.Order{}).Where("id = ?", id).Update("status", models.StatusReady)
			rows = res.RowsAffected
			return res.Error
		}
		if err != nil {
			return err
		}

		secs := int(now.Sub(o.CreatedAt) / time.Second)
		if secs < 0 {
			secs = 0
		}
		res := tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
			"status":              models.StatusReady,
			"preparation_seconds": secs,
		})
		rows = res.RowsAffected
		return res.Error
	})
	return rows, err
}

// ListActiveOrders returns every order not yet delivered, oldest first.
func (r *GormRepo) ListActiveOrders(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := r.DB.WithContext(ctx).
		Preload("Items", itemsByID).
		Where("status <> ?", models.StatusDelivered).
		Order("created_at ASC").Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	orders := make([]models.Order, 0, limit)
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// OrdersBetween returns orders created in [from, to), newest first.
func (r *GormRepo) OrdersBetween(ctx context.Context, from, to time.Time, withItems bool) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Order("created_at DESC").Order("id DESC")
	if withItems {
		q = q.Preload("Items", itemsByID)
	}
	orders := make([]models.Order, 0)
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

// OrderItemsBetween returns the lines of orders created in [from, to). A nil
// bound leaves that side open.
func (r *GormRepo) OrderItemsBetween(ctx context.Context, from, to *time.Time) ([]models.OrderItem, error) {
	q := r.DB.WithContext(ctx).Model(&models.OrderItem{}).Select("order_items.*").
		Joins("JOIN orders ON orders.id = order_items.order_id")
	if from != nil {
		q = q.Where("orders.created_at >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("orders.created_at < ?", to.UTC())
	}
	items := make([]models.OrderItem, 0)
	if err := q.Order("order_items.id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
