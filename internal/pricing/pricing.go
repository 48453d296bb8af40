// Package pricing prices a cart: subtotal, discount application and the
// per-product grouping used both for display and for order lines.
package pricing

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

var hundred = decimal.NewFromInt(100)

type ProductLookup interface {
	// ProductsByID returns the products that exist for ids. Missing ids are
	// simply absent from the map.
	ProductsByID(ctx context.Context, ids []uint) (map[uint]*models.Product, error)
}

type DiscountLookup interface {
	// FindActiveDiscountByCode returns nil, nil when no active discount has code.
	FindActiveDiscountByCode(ctx context.Context, code string) (*models.Discount, error)
}

type Applied struct {
	Final    decimal.Decimal  `json:"final"`
	Amount   decimal.Decimal  `json:"discount"`
	Discount *models.Discount `json:"applied,omitempty"`
}

type Line struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// resolve loads the products behind cart and drops the ones that no longer
// resolve to an active product.
func resolve(ctx context.Context, cart models.Cart, products ProductLookup) (map[uint]*models.Product, error) {
	if cart.Len() == 0 {
		return map[uint]*models.Product{}, nil
	}
	found, err := products.ProductsByID(ctx, cart.Distinct())
	if err != nil {
		return nil, err
	}
	for id, p := range found {
		if p == nil || !p.Active {
			delete(found, id)
		}
	}
	return found, nil
}

// CartSubtotal sums the current price of every resolvable entry. Repeated ids
// count once per occurrence.
func CartSubtotal(ctx context.Context, cart models.Cart, products ProductLookup) (decimal.Decimal, error) {
	found, err := resolve(ctx, cart, products)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, id := range cart {
		if p, ok := found[id]; ok {
			total = total.Add(p.Price)
		}
	}
	return total, nil
}

// DiscountAmount is what d takes off amount, rounded to cents and never more than amount.
func DiscountAmount(amount decimal.Decimal, d *models.Discount) decimal.Decimal {
	if d == nil || !amount.IsPositive() {
		return decimal.Zero
	}
	var off decimal.Decimal
	switch d.Kind {
	case models.DiscountPercentage:
		off = amount.Mul(d.Value).Div(hundred)
	case models.DiscountFixed:
		off = d.Value
	default:
		return decimal.Zero
	}
	off = off.Round(2)
	if off.IsNegative() {
		return decimal.Zero
	}
	if off.GreaterThan(amount) {
		return amount
	}
	return off
}

// ApplyDiscount resolves code and applies it to amount. An empty, unknown or
// inactive code leaves the amount untouched.
func ApplyDiscount(ctx context.Context, amount decimal.Decimal, code string, discounts DiscountLookup) (Applied, error) {
	res := Applied{Final: amount, Amount: decimal.Zero}

	code = NormalizeCode(code)
	if code == "" {
		return res, nil
	}
	d, err := discounts.FindActiveDiscountByCode(ctx, code)
	if err != nil {
		return res, err
	}
	if d == nil || !d.Active {
		return res, nil
	}

	res.Amount = DiscountAmount(amount, d)
	res.Final = amount.Sub(res.Amount)
	res.Discount = d
	return res, nil
}

// GroupCart collapses the cart into one line per product id, in the order each
// product was first added. Unresolvable entries are skipped.
func GroupCart(ctx context.Context, cart models.Cart, products ProductLookup) ([]Line, error) {
	found, err := resolve(ctx, cart, products)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(found))
	index := make(map[uint]int, len(found))
	for _, id := range cart {
		p, ok := found[id]
		if !ok {
			continue
		}
		if i, seen := index[id]; seen {
			lines[i].Quantity++
			continue
		}
		index[id] = len(lines)
		lines = append(lines, Line{Product: *p, Quantity: 1})
	}
	return lines, nil
}

func LinesTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}
