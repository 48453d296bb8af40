package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

type AddCartItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
}

type DiscountCodeRequest struct {
	Code string `json:"code" validate:"required,max=20"`
}

type StatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending preparing ready delivered"`
}

type ProductRequest struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category" validate:"required,max=50"`
}

type DiscountRequest struct {
	Code  string              `json:"code" validate:"required,max=20"`
	Kind  models.DiscountKind `json:"kind" validate:"required,oneof=percentage fixed"`
	Value decimal.Decimal     `json:"value"`
}

// UserRequest serves create and update; on update an empty password keeps the current one.
type UserRequest struct {
	Username string      `json:"username" validate:"required,max=50"`
	Password string      `json:"password" validate:"omitempty,min=6,max=72"`
	Name     string      `json:"name" validate:"required,max=100"`
	Role     models.Role `json:"role" validate:"required,oneof=admin server"`
}

type ListResponse[T any] struct {
	Data []T `json:"data"`
	Meta any `json:"meta,omitempty"`
}
