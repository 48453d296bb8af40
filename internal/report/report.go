// Package report aggregates sales figures and lays them out as documents
// that render to PDF or XLSX.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

const DateLayout = "2006-01-02"

type Summary struct {
	Orders             int             `json:"orders"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discounts          decimal.Decimal `json:"discounts"`
	Sales              decimal.Decimal `json:"sales"`
	AverageTicket      decimal.Decimal `json:"average_ticket"`
	PreparedOrders     int             `json:"prepared_orders"`
	AveragePrepSeconds int             `json:"average_preparation_seconds"`
}

type SalesDay struct {
	Date     string                     `json:"date"`
	Summary  Summary                    `json:"summary"`
	ByStatus map[models.OrderStatus]int `json:"by_status"`
	Orders   []models.Order             `json:"orders"`
}

type DailySales struct {
	Date      string          `json:"date"`
	Orders    int             `json:"orders"`
	Discounts decimal.Decimal `json:"discounts"`
	Sales     decimal.Decimal `json:"sales"`
}

type SalesRange struct {
	Start   string       `json:"start_date"`
	End     string       `json:"end_date"`
	Summary Summary      `json:"summary"`
	Days    []DailySales `json:"days"`
}

type ProductSales struct {
	ProductID    uint            `json:"product_id"`
	Name         string          `json:"name"`
	Units        int             `json:"units"`
	Revenue      decimal.Decimal `json:"revenue"`
	Orders       int             `json:"orders"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

type TopProducts struct {
	Start    string         `json:"start_date,omitempty"`
	End      string         `json:"end_date,omitempty"`
	Products []ProductSales `json:"products"`
}

type CategorySales struct {
	Category string          `json:"category"`
	Orders   int             `json:"orders"`
	Units    int             `json:"units"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type Categories struct {
	Start      string          `json:"start_date,omitempty"`
	End        string          `json:"end_date,omitempty"`
	Categories []CategorySales `json:"categories"`
}

type Dashboard struct {
	Date               string          `json:"date"`
	OrdersToday        int             `json:"orders_today"`
	SalesToday         decimal.Decimal `json:"sales_today"`
	AveragePrepMinutes int             `json:"average_preparation_minutes"`
	Preparing          int64           `json:"preparing"`
	Recent             []models.Order  `json:"recent_orders"`
}

func divRound(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// Summarize totals a set of orders. Only orders with a recorded preparation
// time count toward the preparation average.
func Summarize(orders []models.Order) Summary {
	s := Summary{Subtotal: decimal.Zero, Discounts: decimal.Zero, Sales: decimal.Zero}
	prepTotal := 0
	for _, o := range orders {
		s.Orders++
		s.Subtotal = s.Subtotal.Add(o.Total)
		s.Discounts = s.Discounts.Add(o.Discount)
		s.Sales = s.Sales.Add(o.FinalTotal)
		if o.PreparationSeconds != nil {
			s.PreparedOrders++
			prepTotal += *o.PreparationSeconds
		}
	}
	s.AverageTicket = divRound(s.Sales, s.Orders)
	if s.PreparedOrders > 0 {
		s.AveragePrepSeconds = (prepTotal + s.PreparedOrders/2) / s.PreparedOrders
	}
	return s
}

func StatusBreakdown(orders []models.Order) map[models.OrderStatus]int {
	out := make(map[models.OrderStatus]int, len(models.Statuses))
	for _, st := range models.Statuses {
		out[st] = 0
	}
	for _, o := range orders {
		out[o.Status]++
	}
	return out
}

// DailyBreakdown groups orders by calendar day in loc, oldest day first.
func DailyBreakdown(orders []models.Order, loc *time.Location) []DailySales {
	byDay := make(map[string]*DailySales)
	for _, o := range orders {
		day := o.CreatedAt.In(loc).Format(DateLayout)
		d, ok := byDay[day]
		if !ok {
			d = &DailySales{Date: day, Discounts: decimal.Zero, Sales: decimal.Zero}
			byDay[day] = d
		}
		d.Orders++
		d.Discounts = d.Discounts.Add(o.Discount)
		d.Sales = d.Sales.Add(o.FinalTotal)
	}
	out := make([]DailySales, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// RankProducts totals order lines per product, best sellers by units first.
// The most recent line supplies the display name. limit <= 0 keeps everything.
func RankProducts(items []models.OrderItem, limit int) []ProductSales {
	type acc struct {
		ProductSales
		orders map[uint]struct{}
	}
	byID := make(map[uint]*acc)
	for _, it := range items {
		a, ok := byID[it.ProductID]
		if !ok {
			a = &acc{ProductSales: ProductSales{ProductID: it.ProductID, Revenue: decimal.Zero}, orders: map[uint]struct{}{}}
			byID[it.ProductID] = a
		}
		a.Name = it.ProductName
		a.Units += it.Quantity
		a.Revenue = a.Revenue.Add(it.LineTotal())
		a.orders[it.OrderID] = struct{}{}
	}

	out := make([]ProductSales, 0, len(byID))
	for _, a := range byID {
		a.Orders = len(a.orders)
		a.AveragePrice = divRound(a.Revenue, a.Units)
		out = append(out, a.ProductSales)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RankCategories totals order lines by the product's current category,
// highest revenue first. Lines whose product no longer exists are left out.
func RankCategories(items []models.OrderItem, products map[uint]*models.Product) []CategorySales {
	type acc struct {
		CategorySales
		orders map[uint]struct{}
	}
	byCat := make(map[string]*acc)
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok || p == nil {
			continue
		}
		a, ok := byCat[p.Category]
		if !ok {
			a = &acc{CategorySales: CategorySales{Category: p.Category, Revenue: decimal.Zero}, orders: map[uint]struct{}{}}
			byCat[p.Category] = a
		}
		a.Units += it.Quantity
		a.Revenue = a.Revenue.Add(it.LineTotal())
		a.orders[it.OrderID] = struct{}{}
	}

	out := make([]CategorySales, 0, len(byCat))
	for _, a := range byCat {
		a.Orders = len(a.orders)
		out = append(out, a.CategorySales)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
