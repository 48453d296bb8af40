package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/pricing"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

const maxNumberAttempts = 5

type OrderService struct {
	Repo      OrderStore
	Products  pricing.ProductLookup
	Discounts pricing.DiscountLookup
	Events    Publisher

	// Location decides the calendar date printed in order numbers.
	Location *time.Location
	// Strict turns on the transition table for SetStatus.
	Strict bool

	Now    func() time.Time
	Number func(now time.Time) string
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OrderService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

// OrderNumber formats P{yyyymmdd}-{nnnn} with a random suffix in 1..9999.
func OrderNumber(now time.Time, loc *time.Location) string {
	return fmt.Sprintf("P%s-%04d", now.In(loc).Format("20060102"), rand.IntN(9999)+1)
}

func (s *OrderService) number(now time.Time) string {
	if s.Number != nil {
		return s.Number(now)
	}
	return OrderNumber(now, s.location())
}

// CreateOrder prices cart, applies code again and stores the header with one
// line per product in a single transaction.
func (s *OrderService) CreateOrder(ctx context.Context, cart models.Cart, subtotal decimal.Decimal, code string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	if cart.Len() == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	if subtotal.IsNegative() {
		return nil, fmt.Errorf("%w: subtotal must be >= 0", ErrValidation)
	}

	lines, err := pricing.GroupCart(ctx, cart, s.Products)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart has no available products", ErrValidation)
	}
	applied, err := pricing.ApplyDiscount(ctx, subtotal, code, s.Discounts)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for attempt := 1; ; attempt++ {
		order := &models.Order{
			Number:     s.number(now),
			Total:      subtotal,
			Discount:   applied.Amount,
			FinalTotal: applied.Final,
			Status:     models.StatusPending,
			CreatedAt:  now.UTC(),
			Items:      orderItems(lines),
		}

		err := s.Repo.CreateOrder(ctx, order)
		if err == nil {
			l.Info("order_created", "order_id", order.ID, "number", order.Number, "final_total", order.FinalTotal.StringFixed(2))
			s.emit(ctx, "order_created", order)
			return order, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == maxNumberAttempts {
			return nil, err
		}
		l.Warn("order_number_collision", "number", order.Number, "attempt", attempt)
	}
}

func orderItems(lines []pricing.Line) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, ln := range lines {
		items = append(items, models.OrderItem{
			ProductID:   ln.Product.ID,
			ProductName: ln.Product.Name,
			Price:       ln.Product.Price,
			Quantity:    ln.Quantity,
		})
	}
	return items
}

// SetStatus moves an order to status. Moving to ready also records the whole
// seconds since the order was created. Without Strict, unknown ids are a
// silent no-op and any status may follow any other.
func (s *OrderService) SetStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	l := logging.FromContext(ctx).With("svc", "order.set_status", "order_id", id, "status", status)

	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if s.Strict {
		current, err := s.Repo.FindOrder(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		if current.Status == status {
			return nil
		}
		if !models.CanTransition(current.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
		}
	}

	var (
		rows int64
		err  error
	)
	if status == models.StatusReady {
		rows, err = s.Repo.MarkOrderReady(ctx, id, s.now())
	} else {
		rows, err = s.Repo.UpdateOrderStatus(ctx, id, status)
	}
	if err != nil {
		return err
	}
	if rows == 0 {
		l.Info("order_status_noop")
		return nil
	}

	publish(ctx, s.Events, TopicOrders, fmt.Sprint(id), map[string]any{
		"type":    "order_status_changed",
		"orderID": id,
		"status":  status,
	})
	return nil
}

func (s *OrderService) ListActive(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListActiveOrders(ctx)
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.Repo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return o, nil
}

func (s *OrderService) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	return s.Repo.RecentOrders(ctx, limit)
}

func (s *OrderService) emit(ctx context.Context, eventType string, o *models.Order) {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"productID": it.ProductID,
			"name":      it.ProductName,
			"price":     it.Price.StringFixed(2),
			"quantity":  it.Quantity,
		})
	}
	publish(ctx, s.Events, TopicOrders, o.Number, map[string]any{
		"type":       eventType,
		"orderID":    o.ID,
		"number":     o.Number,
		"total":      o.Total.StringFixed(2),
		"discount":   o.Discount.StringFixed(2),
		"finalTotal": o.FinalTotal.StringFixed(2),
		"status":     o.Status,
		"items":      items,
	})
}
