package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/pricing"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
)

var hundred = decimal.NewFromInt(100)

type DiscountService struct {
	Repo   DiscountStore
	Events Publisher
}

type DiscountInput struct {
	Code  string
	Kind  models.DiscountKind
	Value decimal.Decimal
}

func (in DiscountInput) normalize() (DiscountInput, error) {
	in.Code = pricing.NormalizeCode(in.Code)
	switch {
	case in.Code == "":
		return in, fmt.Errorf("%w: code required", ErrValidation)
	case utf8.RuneCountInString(in.Code) > 20:
		return in, fmt.Errorf("%w: code longer than 20 characters", ErrValidation)
	case !in.Kind.Valid():
		return in, fmt.Errorf("%w: kind must be %q or %q", ErrValidation, models.DiscountPercentage, models.DiscountFixed)
	case !in.Value.IsPositive():
		return in, fmt.Errorf("%w: value must be > 0", ErrValidation)
	case in.Kind == models.DiscountPercentage && in.Value.GreaterThan(hundred):
		return in, fmt.Errorf("%w: percentage cannot exceed 100", ErrValidation)
	case in.Value.GreaterThan(maxPrice):
		return in, fmt.Errorf("%w: value too large", ErrValidation)
	}
	in.Value = in.Value.Round(2)
	return in, nil
}

func (s *DiscountService) ListDiscounts(ctx context.Context, f repo.DiscountFilter) ([]models.Discount, error) {
	return s.Repo.ListDiscounts(ctx, f)
}

func (s *DiscountService) GetDiscount(ctx context.Context, id uint) (*models.Discount, error) {
	d, err := s.Repo.FindDiscount(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: discount %d", ErrNotFound, id)
	}
	return d, nil
}

func (s *DiscountService) ensureUnique(ctx context.Context, code string, excludeID uint) error {
	exists, err := s.Repo.DiscountCodeExists(ctx, code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: discount code %s already exists", ErrConflict, code)
	}
	return nil
}

func (s *DiscountService) CreateDiscount(ctx context.Context, in DiscountInput) (*models.Discount, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, in.Code, 0); err != nil {
		return nil, err
	}

	d := &models.Discount{Code: in.Code, Kind: in.Kind, Value: in.Value, Active: true}
	if err := s.Repo.CreateDiscount(ctx, d); err != nil {
		if repo.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: discount code %s already exists", ErrConflict, in.Code)
		}
		return nil, err
	}
	s.emit(ctx, "discount_created", d)
	return d, nil
}

func (s *DiscountService) UpdateDiscount(ctx context.Context, id uint, in DiscountInput) (*models.Discount, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if _, err := s.GetDiscount(ctx, id); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, in.Code, id); err != nil {
		return nil, err
	}

	d := &models.Discount{ID: id, Code: in.Code, Kind: in.Kind, Value: in.Value}
	if err := s.Repo.UpdateDiscount(ctx, d); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: discount %d", ErrNotFound, id)
		case repo.IsDuplicate(err):
			return nil, fmt.Errorf("%w: discount code %s already exists", ErrConflict, in.Code)
		}
		return nil, err
	}
	updated, err := s.GetDiscount(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, "discount_updated", updated)
	return updated, nil
}

func (s *DiscountService) DeactivateDiscount(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, false)
}

func (s *DiscountService) ActivateDiscount(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, true)
}

func (s *DiscountService) setActive(ctx context.Context, id uint, active bool) error {
	if err := s.Repo.SetDiscountActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: discount %d", ErrNotFound, id)
		}
		return err
	}
	d, err := s.GetDiscount(ctx, id)
	if err != nil {
		return err
	}
	typ := "discount_deactivated"
	if active {
		typ = "discount_activated"
	}
	s.emit(ctx, typ, d)
	return nil
}

func (s *DiscountService) emit(ctx context.Context, eventType string, d *models.Discount) {
	publish(ctx, s.Events, TopicDiscounts, d.Code, map[string]any{
		"type":       eventType,
		"discountID": d.ID,
		"code":       d.Code,
		"kind":       d.Kind,
		"value":      d.Value.StringFixed(2),
		"active":     d.Active,
	})
}
