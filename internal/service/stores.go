package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
)

type ProductStore interface {
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	ProductsByID(ctx context.Context, ids []uint) (map[uint]*models.Product, error)
	ListProducts(ctx context.Context, f repo.ProductFilter) ([]models.Product, error)
	ProductCategories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	SetProductActive(ctx context.Context, id uint, active bool) error
}

type DiscountStore interface {
	FindDiscount(ctx context.Context, id uint) (*models.Discount, error)
	FindActiveDiscountByCode(ctx context.Context, code string) (*models.Discount, error)
	ListDiscounts(ctx context.Context, f repo.DiscountFilter) ([]models.Discount, error)
	DiscountCodeExists(ctx context.Context, code string, excludeID uint) (bool, error)
	CreateDiscount(ctx context.Context, d *models.Discount) error
	UpdateDiscount(ctx context.Context, d *models.Discount) error
	SetDiscountActive(ctx context.Context, id uint, active bool) error
}

type UserStore interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, f repo.UserFilter) ([]models.User, error)
	UsernameExists(ctx context.Context, username string, excludeID uint) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	SetUserActive(ctx context.Context, id uint, active bool) error
	RevokeUserTokens(ctx context.Context, userID uint) error
}

type AuthStore interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateSession(ctx context.Context, s *models.Session) error
	DeleteSession(ctx context.Context, id string) error
	SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error
	RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error
	RevokeRefreshToken(ctx context.Context, raw string) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (int64, error)
	MarkOrderReady(ctx context.Context, id uint, now time.Time) (int64, error)
	ListActiveOrders(ctx context.Context) ([]models.Order, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
}

type SessionStore interface {
	FindSession(ctx context.Context, id string) (*models.Session, error)
	SaveSession(ctx context.Context, s *models.Session) error
}

type ReportStore interface {
	OrdersBetween(ctx context.Context, from, to time.Time, withItems bool) ([]models.Order, error)
	OrderItemsBetween(ctx context.Context, from, to *time.Time) ([]models.OrderItem, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int64, error)
	ProductsByID(ctx context.Context, ids []uint) (map[uint]*models.Product, error)
}

// ProductIndex is the full-text side of the catalog.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	SearchProducts(ctx context.Context, query string, limit int) ([]uint, error)
}

var (
	_ ProductStore  = (*repo.GormRepo)(nil)
	_ DiscountStore = (*repo.GormRepo)(nil)
	_ UserStore     = (*repo.GormRepo)(nil)
	_ AuthStore     = (*repo.GormRepo)(nil)
	_ OrderStore    = (*repo.GormRepo)(nil)
	_ SessionStore  = (*repo.GormRepo)(nil)
	_ ReportStore   = (*repo.GormRepo)(nil)
)
