package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

// maxListedOrders caps the order table of printed day reports.
const maxListedOrders = 50

type Branding struct {
	Name     string
	Currency string
	Location *time.Location
}

func (b Branding) loc() *time.Location {
	if b.Location == nil {
		return time.UTC
	}
	return b.Location
}

func (b Branding) Money(d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", b.Currency, d.StringFixed(2))
}

type Field struct {
	Label string
	Value string
}

type Table struct {
	Heading string
	Columns []string
	Rows    [][]string
}

type Document struct {
	Title    string
	Subtitle string
	Fields   []Field
	Tables   []Table
	Footer   string
	// Receipt selects the narrow till-roll layout.
	Receipt bool
}

func itoa(n int) string { return strconv.Itoa(n) }

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func prep(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d min %02d s", seconds/60, seconds%60)
}

func summaryFields(b Branding, s Summary) []Field {
	return []Field{
		{"Orders", itoa(s.Orders)},
		{"Subtotal", b.Money(s.Subtotal)},
		{"Discounts", b.Money(s.Discounts)},
		{"Sales", b.Money(s.Sales)},
		{"Average ticket", b.Money(s.AverageTicket)},
		{"Average preparation", prep(s.AveragePrepSeconds)},
	}
}

func (r SalesDay) Document(b Branding) Document {
	fields := summaryFields(b, r.Summary)
	for _, st := range models.Statuses {
		fields = append(fields, Field{"Status " + string(st), itoa(r.ByStatus[st])})
	}

	rows := make([][]string, 0, min(len(r.Orders), maxListedOrders))
	for i, o := range r.Orders {
		if i == maxListedOrders {
			break
		}
		p := "-"
		if o.PreparationSeconds != nil {
			p = prep(*o.PreparationSeconds)
		}
		rows = append(rows, []string{
			o.Number,
			o.CreatedAt.In(b.loc()).Format("15:04"),
			string(o.Status),
			money(o.Total),
			money(o.Discount),
			money(o.FinalTotal),
			p,
		})
	}
	return Document{
		Title:    b.Name,
		Subtitle: "Daily sales report " + r.Date,
		Fields:   fields,
		Tables: []Table{{
			Heading: "Orders",
			Columns: []string{"Number", "Time", "Status", "Subtotal (" + b.Currency + ")", "Discount (" + b.Currency + ")", "Total (" + b.Currency + ")", "Preparation"},
			Rows:    rows,
		}},
	}
}

func (r SalesRange) Document(b Branding) Document {
	rows := make([][]string, 0, len(r.Days))
	for _, d := range r.Days {
		rows = append(rows, []string{d.Date, itoa(d.Orders), money(d.Discounts), money(d.Sales)})
	}
	return Document{
		Title:    b.Name,
		Subtitle: fmt.Sprintf("Sales report %s to %s", r.Start, r.End),
		Fields:   summaryFields(b, r.Summary),
		Tables: []Table{{
			Heading: "Daily sales",
			Columns: []string{"Date", "Orders", "Discounts (" + b.Currency + ")", "Sales (" + b.Currency + ")"},
			Rows:    rows,
		}},
	}
}

func periodLabel(start, end string) string {
	switch {
	case start == "" && end == "":
		return "all time"
	case start == "":
		return "until " + end
	case end == "":
		return "since " + start
	default:
		return start + " to " + end
	}
}

func (r TopProducts) Document(b Branding) Document {
	rows := make([][]string, 0, len(r.Products))
	for i, p := range r.Products {
		rows = append(rows, []string{itoa(i + 1), p.Name, itoa(p.Units), itoa(p.Orders), money(p.AveragePrice), money(p.Revenue)})
	}
	return Document{
		Title:    b.Name,
		Subtitle: "Top products, " + periodLabel(r.Start, r.End),
		Tables: []Table{{
			Heading: "Products",
			Columns: []string{"#", "Product", "Units", "Orders", "Avg price (" + b.Currency + ")", "Revenue (" + b.Currency + ")"},
			Rows:    rows,
		}},
	}
}

func (r Categories) Document(b Branding) Document {
	rows := make([][]string, 0, len(r.Categories))
	total := decimal.Zero
	for _, c := range r.Categories {
		total = total.Add(c.Revenue)
		rows = append(rows, []string{c.Category, itoa(c.Orders), itoa(c.Units), money(c.Revenue)})
	}
	return Document{
		Title:    b.Name,
		Subtitle: "Sales by category, " + periodLabel(r.Start, r.End),
		Fields:   []Field{{"Revenue", b.Money(total)}},
		Tables: []Table{{
			Heading: "Categories",
			Columns: []string{"Category", "Orders", "Units", "Revenue (" + b.Currency + ")"},
			Rows:    rows,
		}},
	}
}

// Ticket lays out a customer receipt for o.
func Ticket(o *models.Order, b Branding) Document {
	rows := make([][]string, 0, len(o.Items))
	for _, it := range o.Items {
		rows = append(rows, []string{itoa(it.Quantity), it.ProductName, money(it.LineTotal())})
	}
	fields := []Field{{"Subtotal", b.Money(o.Total)}}
	if o.Discount.IsPositive() {
		fields = append(fields, Field{"Discount", "-" + b.Money(o.Discount)})
	}
	fields = append(fields, Field{"Total", b.Money(o.FinalTotal)})

	return Document{
		Title:    b.Name,
		Subtitle: fmt.Sprintf("Order %s  %s", o.Number, o.CreatedAt.In(b.loc()).Format("2006-01-02 15:04")),
		Tables: []Table{{
			Columns: []string{"Qty", "Item", b.Currency},
			Rows:    rows,
		}},
		Fields:  fields,
		Footer:  "Thank you for your visit",
		Receipt: true,
	}
}
