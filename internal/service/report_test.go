package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/report"
)

var cst = time.FixedZone("CST", -6*3600)

func seedOrder(t *testing.T, e *env, n int, at time.Time, status models.OrderStatus, prep *int, items ...models.OrderItem) {
	t.Helper()
	total := dec("0")
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	o := &models.Order{
		Number:             fmt.Sprintf("P%s-%04d", at.In(cst).Format("20060102"), n),
		Total:              total,
		Discount:           dec("0"),
		FinalTotal:         total,
		Status:             status,
		CreatedAt:          at.UTC(),
		PreparationSeconds: prep,
		Items:              items,
	}
	require.NoError(t, e.repo.CreateOrder(context.Background(), o))
}

func line(id uint, name, price string, qty int) models.OrderItem {
	return models.OrderItem{ProductID: id, ProductName: name, Price: dec(price), Quantity: qty}
}

func intp(v int) *int { return &v }

func newReports(t *testing.T) (*env, *ReportService) {
	t.Helper()
	e := newEnv(t)
	// 2024-03-15 12:00 local
	e.clock.t = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

	seedOrder(t, e, 1, time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC), models.StatusDelivered, intp(300),
		line(hamburguesaClasica, "Hamburguesa Clásica", "45", 2), line(cocaCola, "Coca Cola", "15", 1))
	seedOrder(t, e, 2, time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC), models.StatusPreparing, nil,
		line(cocaCola, "Coca Cola", "15", 3))
	// Late evening on the 14th locally.
	seedOrder(t, e, 3, time.Date(2024, 3, 15, 4, 0, 0, 0, time.UTC), models.StatusDelivered, intp(500),
		line(jugoNatural, "Jugo Natural", "20", 1))
	seedOrder(t, e, 4, time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC), models.StatusDelivered, nil,
		line(papasFritas, "Papas Fritas", "20", 2))

	return e, &ReportService{
		Repo:     e.repo,
		Branding: report.Branding{Name: "SAZÓN MEXICANO", Currency: "Q", Location: cst},
		Now:      e.clock.Now,
	}
}

func TestDashboard(t *testing.T) {
	_, svc := newReports(t)
	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15", d.Date)
	assert.Equal(t, 2, d.OrdersToday)
	assert.True(t, d.SalesToday.Equal(dec("150")))
	assert.Equal(t, 5, d.AveragePrepMinutes)
	assert.Equal(t, int64(1), d.Preparing)
	assert.Len(t, d.Recent, 4)
}

func TestSalesDay(t *testing.T) {
	_, svc := newReports(t)
	ctx := context.Background()

	r, err := svc.SalesDay(ctx, "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Summary.Orders)
	assert.True(t, r.Summary.Sales.Equal(dec("20")))
	assert.Equal(t, 500, r.Summary.AveragePrepSeconds)
	assert.Equal(t, 1, r.ByStatus[models.StatusDelivered])

	today, err := svc.SalesDay(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", today.Date)
	require.Len(t, today.Orders, 2)
	assert.True(t, today.Orders[0].CreatedAt.After(today.Orders[1].CreatedAt))

	_, err = svc.SalesDay(ctx, "15/03/2024")
	require.ErrorIs(t, err, ErrValidation)
}

func TestSalesRange(t *testing.T) {
	_, svc := newReports(t)
	ctx := context.Background()

	r, err := svc.SalesRange(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", r.Start)
	assert.Equal(t, "2024-03-15", r.End)
	assert.Equal(t, 4, r.Summary.Orders)
	require.Len(t, r.Days, 3)
	assert.Equal(t, "2024-03-10", r.Days[0].Date)

	r, err = svc.SalesRange(ctx, "2024-03-14", "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Summary.Orders)

	_, err = svc.SalesRange(ctx, "2024-03-15", "2024-03-01")
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.SalesRange(ctx, "2022-01-01", "2024-03-01")
	require.ErrorIs(t, err, ErrValidation)
}

func TestTopProductsAndCategories(t *testing.T) {
	_, svc := newReports(t)
	ctx := context.Background()

	top, err := svc.TopProducts(ctx, "", "", 0)
	require.NoError(t, err)
	require.Len(t, top.Products, 4)
	assert.Equal(t, cocaCola, top.Products[0].ProductID)
	assert.Equal(t, 4, top.Products[0].Units)
	assert.Equal(t, 2, top.Products[0].Orders)

	top, err = svc.TopProducts(ctx, "2024-03-15", "2024-03-15", 1)
	require.NoError(t, err)
	require.Len(t, top.Products, 1)
	assert.Equal(t, cocaCola, top.Products[0].ProductID)

	_, err = svc.TopProducts(ctx, "", "", -1)
	require.ErrorIs(t, err, ErrValidation)

	cats, err := svc.Categories(ctx, "2024-03-14", "")
	require.NoError(t, err)
	require.Len(t, cats.Categories, 2)
	assert.Equal(t, "Hamburguesas", cats.Categories[0].Category)
	assert.True(t, cats.Categories[0].Revenue.Equal(dec("90")))
	assert.Equal(t, "Bebidas", cats.Categories[1].Category)
	assert.Equal(t, 3, cats.Categories[1].Orders)
}

func TestExport(t *testing.T) {
	_, svc := newReports(t)
	ctx := context.Background()

	for _, kind := range []string{ReportSalesDay, ReportSalesRange, ReportTopProducts, ReportCategories} {
		t.Run(kind, func(t *testing.T) {
			doc, err := svc.Export(ctx, kind, ReportQuery{})
			require.NoError(t, err)
			assert.Equal(t, "SAZÓN MEXICANO", doc.Title)
			assert.NotEmpty(t, doc.Tables)
		})
	}

	_, err := svc.Export(ctx, "payroll", ReportQuery{})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Export(ctx, ReportSalesDay, ReportQuery{Date: "yesterday"})
	require.ErrorIs(t, err, ErrValidation)
}
