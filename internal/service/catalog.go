package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

var maxPrice = decimal.RequireFromString("99999999.99")

type CatalogService struct {
	Repo   ProductStore
	Index  ProductIndex
	Events Publisher
}

type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Category string
}

type MenuCategory struct {
	Category string           `json:"category"`
	Products []models.Product `json:"products"`
}

func (in ProductInput) normalize() (ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	switch {
	case in.Name == "":
		return in, fmt.Errorf("%w: name required", ErrValidation)
	case utf8.RuneCountInString(in.Name) > 100:
		return in, fmt.Errorf("%w: name longer than 100 characters", ErrValidation)
	case in.Category == "":
		return in, fmt.Errorf("%w: category required", ErrValidation)
	case utf8.RuneCountInString(in.Category) > 50:
		return in, fmt.Errorf("%w: category longer than 50 characters", ErrValidation)
	case in.Price.IsNegative():
		return in, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	case in.Price.GreaterThan(maxPrice):
		return in, fmt.Errorf("%w: price too large", ErrValidation)
	}
	in.Price = in.Price.Round(2)
	return in, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx, f)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.Repo.ProductCategories(ctx)
}

// Menu returns the active products grouped by category, categories in alphabetical order.
func (s *CatalogService) Menu(ctx context.Context) ([]MenuCategory, error) {
	active := true
	items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{Active: &active})
	if err != nil {
		return nil, err
	}
	menu := make([]MenuCategory, 0)
	for _, p := range items {
		if n := len(menu); n == 0 || menu[n-1].Category != p.Category {
			menu = append(menu, MenuCategory{Category: p.Category})
		}
		last := &menu[len(menu)-1]
		last.Products = append(last.Products, p)
	}
	return menu, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	p := &models.Product{Name: in.Name, Price: in.Price, Category: in.Category, Active: true}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "product_created", p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	p := &models.Product{ID: id, Name: in.Name, Price: in.Price, Category: in.Category}
	if err := s.Repo.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	updated, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "product_updated", updated)
	return updated, nil
}

func (s *CatalogService) DeactivateProduct(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, false)
}

func (s *CatalogService) ActivateProduct(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, true)
}

func (s *CatalogService) setActive(ctx context.Context, id uint, active bool) error {
	if err := s.Repo.SetProductActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	typ := "product_deactivated"
	if active {
		typ = "product_activated"
	}
	s.afterWrite(ctx, typ, p)
	return nil
}

// SearchProducts looks up active products by free text. The search index is
// preferred; the database is the fallback when the index is absent or failing.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query required", ErrValidation)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	active := true

	if s.Index != nil {
		ids, err := s.Index.SearchProducts(ctx, query, limit)
		if err == nil {
			found, err := s.Repo.ProductsByID(ctx, ids)
			if err != nil {
				return nil, err
			}
			out := make([]models.Product, 0, len(ids))
			for _, id := range ids {
				if p, ok := found[id]; ok && p.Active {
					out = append(out, *p)
				}
			}
			return out, nil
		}
		logging.FromContext(ctx).Warn("product_search_index_failed", "error", err)
	}

	return s.Repo.ListProducts(ctx, repo.ProductFilter{Search: query, Active: &active, Limit: limit})
}

// Reindex pushes every product into the search index.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{})
	if err != nil {
		return 0, err
	}
	for i := range items {
		if err := s.Index.IndexProduct(ctx, &items[i]); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

func (s *CatalogService) afterWrite(ctx context.Context, eventType string, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("product_index_failed", "product_id", p.ID, "error", err)
		}
	}
	publish(ctx, s.Events, TopicProducts, fmt.Sprint(p.ID), map[string]any{
		"type":      eventType,
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price.StringFixed(2),
		"category":  p.Category,
		"active":    p.Active,
	})
}
