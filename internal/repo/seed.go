package repo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/pkg/hash"
)

type seedUser struct {
	Username, Password, Name string
	Role                     models.Role
}

var seedUsers = []seedUser{
	{"admin", "admin123", "Administrador", models.RoleAdmin},
	{"mesero", "mesero123", "Mesero Principal", models.RoleServer},
}

var seedProducts = []struct {
	Name, Price, Category string
}{
	{"Hamburguesa Clásica", "45.00", "Hamburguesas"},
	{"Hamburguesa Doble", "65.00", "Hamburguesas"},
	{"Hamburguesa BBQ", "70.00", "Hamburguesas"},
	{"Hamburguesa con Queso", "55.00", "Hamburguesas"},
	{"Hot Dog Simple", "30.00", "Hot Dogs"},
	{"Hot Dog Especial", "40.00", "Hot Dogs"},
	{"Hot Dog Mexicano", "45.00", "Hot Dogs"},
	{"Coca Cola", "15.00", "Bebidas"},
	{"Agua", "10.00", "Bebidas"},
	{"Jugo Natural", "20.00", "Bebidas"},
	{"Horchata", "18.00", "Bebidas"},
	{"Agua Fresca", "20.00", "Bebidas"},
	{"Papas Fritas", "20.00", "Acompañamientos"},
	{"Aros de Cebolla", "25.00", "Acompañamientos"},
	{"Nachos", "30.00", "Acompañamientos"},
	{"Tacos al Pastor", "35.00", "Tacos"},
	{"Tacos de Carnitas", "40.00", "Tacos"},
	{"Quesadilla", "45.00", "Mexicanos"},
	{"Burrito", "50.00", "Mexicanos"},
	{"Enchiladas", "48.00", "Mexicanos"},
	{"Flan", "25.00", "Postres"},
	{"Churros", "20.00", "Postres"},
}

var seedDiscounts = []struct {
	Code  string
	Kind  models.DiscountKind
	Value int64
}{
	{"DESC10", models.DiscountPercentage, 10},
	{"DESC20", models.DiscountPercentage, 20},
	{"FIJO15", models.DiscountFixed, 15},
}

type SeedResult struct {
	Users, Products, Discounts int
}

// Seed fills each of users, products and discounts with the starter data,
// but only when that table is still empty.
func (r *GormRepo) Seed(ctx context.Context) (SeedResult, error) {
	var res SeedResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if empty, err := isEmpty(tx, &models.User{}); err != nil {
			return err
		} else if empty {
			for _, u := range seedUsers {
				h, err := hash.HashPassword(u.Password)
				if err != nil {
					return fmt.Errorf("seed user %s: %w", u.Username, err)
				}
				row := models.User{Username: u.Username, PasswordHash: h, Name: u.Name, Role: u.Role, Active: true}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				res.Users++
			}
		}

		if empty, err := isEmpty(tx, &models.Product{}); err != nil {
			return err
		} else if empty {
			rows := make([]models.Product, 0, len(seedProducts))
			for _, p := range seedProducts {
				rows = append(rows, models.Product{
					Name:     p.Name,
					Price:    decimal.RequireFromString(p.Price),
					Category: p.Category,
					Active:   true,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
			res.Products = len(rows)
		}

		if empty, err := isEmpty(tx, &models.Discount{}); err != nil {
			return err
		} else if empty {
			rows := make([]models.Discount, 0, len(seedDiscounts))
			for _, d := range seedDiscounts {
				rows = append(rows, models.Discount{
					Code:   d.Code,
					Kind:   d.Kind,
					Value:  decimal.NewFromInt(d.Value),
					Active: true,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
			res.Discounts = len(rows)
		}
		return nil
	})
	return res, err
}

func isEmpty(tx *gorm.DB, model any) (bool, error) {
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}
