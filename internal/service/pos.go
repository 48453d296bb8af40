package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/pricing"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

// PosService keeps the register state of each login session.
type PosService struct {
	Sessions  SessionStore
	Products  pricing.ProductLookup
	Discounts pricing.DiscountLookup
	Orders    *OrderService
}

type CartEntry struct {
	Index     int             `json:"index"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

type CartView struct {
	Entries      []CartEntry      `json:"entries"`
	Lines        []pricing.Line   `json:"lines"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	DiscountCode string           `json:"discount_code,omitempty"`
	Discount     decimal.Decimal  `json:"discount"`
	Total        decimal.Decimal  `json:"total"`
	Applied      *models.Discount `json:"applied_discount,omitempty"`
	LastOrderID  *uint            `json:"last_order_id,omitempty"`
}

func (s *PosService) session(ctx context.Context, sid string) (*models.Session, error) {
	if sid == "" {
		return nil, ErrNoSession
	}
	sess, err := s.Sessions.FindSession(ctx, sid)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	return sess, nil
}

func (s *PosService) save(ctx context.Context, sess *models.Session) (*CartView, error) {
	if err := s.Sessions.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(ctx, sess)
}

func (s *PosService) view(ctx context.Context, sess *models.Session) (*CartView, error) {
	found, err := s.Products.ProductsByID(ctx, sess.Cart.Distinct())
	if err != nil {
		return nil, err
	}
	entries := make([]CartEntry, 0, sess.Cart.Len())
	for i, id := range sess.Cart {
		e := CartEntry{Index: i, ProductID: id, Price: decimal.Zero}
		if p, ok := found[id]; ok {
			e.Name = p.Name
			e.Price = p.Price
			e.Available = p.Active
		}
		entries = append(entries, e)
	}

	lines, err := pricing.GroupCart(ctx, sess.Cart, s.Products)
	if err != nil {
		return nil, err
	}
	subtotal, err := pricing.CartSubtotal(ctx, sess.Cart, s.Products)
	if err != nil {
		return nil, err
	}
	applied, err := pricing.ApplyDiscount(ctx, subtotal, sess.DiscountCode, s.Discounts)
	if err != nil {
		return nil, err
	}

	return &CartView{
		Entries:      entries,
		Lines:        lines,
		Subtotal:     subtotal,
		DiscountCode: sess.DiscountCode,
		Discount:     applied.Amount,
		Total:        applied.Final,
		Applied:      applied.Discount,
		LastOrderID:  sess.LastOrderID,
	}, nil
}

func (s *PosService) View(ctx context.Context, sid string) (*CartView, error) {
	sess, err := s.session(ctx, sid)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sess)
}

// AddProduct appends one unit of an active product.
func (s *PosService) AddProduct(ctx context.Context, sid string, productID uint) (*CartView, error) {
	sess, err := s.session(ctx, sid)
	if err != nil {
		return nil, err
	}
	found, err := s.Products.ProductsByID(ctx, []uint{productID})
	if err != nil {
		return nil, err
	}
	if p, ok := found[productID]; !ok || !p.Active {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	sess.Cart = sess.Cart.Add(productID)
	return s.save(ctx, sess)
}

// RemoveAt drops the cart entry at index; an index outside the cart changes nothing.
func (s *PosService) RemoveAt(ctx context.Context, sid string, index int) (*CartView, error) {
	sess, err := s.session(ctx, sid)
	if err != nil {
		return nil, err
	}
	cart, removed := sess.Cart.RemoveAt(index)
	if !removed {
		return s.view(ctx, sess)
	}
	sess.Cart = cart
	return s.save(ctx, sess)
}

// Clear empties the cart and forgets the discount code.
func (s *PosService) Clear(ctx context.Context, sid string) (*CartView, error) {
	sess, err := s.session(ctx, sid)
	if err != nil {
		return nil, err
	}
	sess.Cart = sess.Cart.Clear()
	sess.DiscountCode = ""
	return s.save(ctx, sess)
}

// SetDiscountCode stores code for the session. Whether it applies shows up in
// the returned view; unknown codes are kept but take nothing off.
func (s *PosService) SetDiscountCode(ctx context.Context, sid, code string) (*CartView, error) {
	sess, err := s.session(ctx, sid)
	if err != nil {
		return nil, err
	}
	code = pricing.NormalizeCode(code)
	if utf8.RuneCountInString(code) > 20 {
		return nil, fmt.Errorf("%w: code longer than 20 characters", ErrValidation)
	}
	sess.DiscountCode = code
	return s.save(ctx, sess)
}

func (s *PosService) RemoveDiscount(ctx context.Context, sid string) (*CartView, error) {
	sess, err := s.session(ctx, sid)
	if err != nil {
		return nil, err
	}
	sess.DiscountCode = ""
	return s.save(ctx, sess)
}

// Confirm turns the cart into an order, then resets the cart and discount
// code and remembers the new order id.
func (s *PosService) Confirm(ctx context.Context, sid string) (*models.Order, error) {
	sess, err := s.session(ctx, sid)
	if err != nil {
		return nil, err
	}
	if sess.Cart.Len() == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	subtotal, err := pricing.CartSubtotal(ctx, sess.Cart, s.Products)
	if err != nil {
		return nil, err
	}
	order, err := s.Orders.CreateOrder(ctx, sess.Cart, subtotal, sess.DiscountCode)
	if err != nil {
		return nil, err
	}

	sess.Cart = sess.Cart.Clear()
	sess.DiscountCode = ""
	sess.LastOrderID = &order.ID
	if err := s.Sessions.SaveSession(ctx, sess); err != nil {
		// the order exists; a stale cart is the lesser problem
		logging.FromContext(ctx).Error("session_reset_failed", "order_id", order.ID, "error", err)
	}
	return order, nil
}
