package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_AddDoesNotAlias(t *testing.T) {
	base := make(Cart, 1, 4)
	base[0] = 1

	a := base.Add(2)
	b := base.Add(3)

	assert.Equal(t, Cart{1, 2}, a)
	assert.Equal(t, Cart{1, 3}, b)
	assert.Equal(t, Cart{1}, base)
}

func TestCart_RemoveAt(t *testing.T) {
	tests := []struct {
		name    string
		cart    Cart
		index   int
		want    Cart
		removed bool
	}{
		{name: "middle", cart: Cart{1, 2, 3}, index: 1, want: Cart{1, 3}, removed: true},
		{name: "first", cart: Cart{1, 2}, index: 0, want: Cart{2}, removed: true},
		{name: "last", cart: Cart{1, 2}, index: 1, want: Cart{1}, removed: true},
		{name: "negative", cart: Cart{1, 2}, index: -1, want: Cart{1, 2}},
		{name: "past end", cart: Cart{1, 2}, index: 2, want: Cart{1, 2}},
		{name: "empty", cart: Cart{}, index: 0, want: Cart{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := tt.cart.RemoveAt(tt.index)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.removed, removed)
		})
	}
}

func TestCart_ClearAndDistinct(t *testing.T) {
	c := Cart{4, 1, 4, 2, 1}
	assert.Equal(t, []uint{4, 1, 2}, c.Distinct())
	assert.Equal(t, 5, c.Len())
	assert.Zero(t, c.Clear().Len())

	ids := c.IDs()
	ids[0] = 99
	assert.EqualValues(t, 4, c[0])
}
