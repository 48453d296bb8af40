package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleServer Role = "server"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleServer
}

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

func (k DiscountKind) Valid() bool {
	return k == DiscountPercentage || k == DiscountFixed
}

type Product struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"           json:"id"`
	Name      string          `gorm:"size:100;not null"                  json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"        json:"price"`
	Category  string          `gorm:"size:50;not null;index"             json:"category"`
	Active    bool            `gorm:"not null;index"                     json:"active"`
	CreatedAt time.Time       `gorm:"not null"                           json:"created_at"`
}

type Discount struct {
	ID     uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Code   string          `gorm:"size:20;not null;uniqueIndex" json:"code"`
	Kind   DiscountKind    `gorm:"size:16;not null"            json:"kind"`
	Value  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	Active bool            `gorm:"not null;index"              json:"active"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"     json:"id"`
	Username     string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:255;not null"            json:"-"`
	Name         string    `gorm:"size:100;not null"            json:"name"`
	Role         Role      `gorm:"size:16;not null"             json:"role"`
	Active       bool      `gorm:"not null"                     json:"active"`
	CreatedAt    time.Time `gorm:"not null"                     json:"created_at"`
}

type Order struct {
	ID                 uint            `gorm:"primaryKey;autoIncrement"                   json:"id"`
	Number             string          `gorm:"size:20;not null;uniqueIndex"               json:"number"`
	Total              decimal.Decimal `gorm:"type:decimal(10,2);not null"                json:"total"`
	Discount           decimal.Decimal `gorm:"type:decimal(10,2);not null"                json:"discount"`
	FinalTotal         decimal.Decimal `gorm:"column:final_total;type:decimal(10,2);not null" json:"final_total"`
	Status             OrderStatus     `gorm:"size:16;not null;index"                     json:"status"`
	CreatedAt          time.Time       `gorm:"not null;index"                             json:"created_at"`
	PreparationSeconds *int            `gorm:"column:preparation_seconds"                 json:"preparation_seconds,omitempty"`
	Items              []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID     uint            `gorm:"not null;index"              json:"order_id"`
	ProductID   uint            `gorm:"not null;index"              json:"product_id"`
	ProductName string          `gorm:"size:100;not null"           json:"product_name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int             `gorm:"not null"                    json:"quantity"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Session is the server-side state behind one login: the cart being built,
// the discount code typed at the register, and the last confirmed order.
type Session struct {
	ID           string    `gorm:"size:36;primaryKey"    json:"id"`
	UserID       uint      `gorm:"not null;index"        json:"user_id"`
	Cart         Cart      `gorm:"type:text;serializer:json" json:"cart"`
	DiscountCode string    `gorm:"size:20"               json:"discount_code"`
	LastOrderID  *uint     `json:"last_order_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"              json:"id"`
	Token     string `gorm:"size:64;not null;uniqueIndex" json:"-"`
	UserID    uint   `gorm:"not null;index"          json:"user_id"`
	SessionID string `gorm:"size:36;not null;index"  json:"session_id"`
	JTI       string `gorm:"size:36;not null;uniqueIndex" json:"jti"`
	ExpiresAt int64  `gorm:"not null"                json:"expires_at"`
	Revoked   bool   `gorm:"not null"                json:"revoked"`
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&Product{},
		&Discount{},
		&User{},
		&Order{},
		&OrderItem{},
		&Session{},
		&RefreshToken{},
	}
}
