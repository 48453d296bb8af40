package models

// Cart is the ordered list of product ids rung up in a session. A product id
// appears once per unit.
type Cart []uint

func (c Cart) Len() int { return len(c) }

func (c Cart) IDs() []uint {
	out := make([]uint, len(c))
	copy(out, c)
	return out
}

func (c Cart) Add(productID uint) Cart {
	out := make(Cart, len(c), len(c)+1)
	copy(out, c)
	return append(out, productID)
}

// RemoveAt drops the entry at index. An out-of-range index leaves the cart unchanged.
func (c Cart) RemoveAt(index int) (Cart, bool) {
	if index < 0 || index >= len(c) {
		return c, false
	}
	out := make(Cart, 0, len(c)-1)
	out = append(out, c[:index]...)
	return append(out, c[index+1:]...), true
}

func (c Cart) Clear() Cart { return Cart{} }

// Distinct returns each product id once, in first-seen order.
func (c Cart) Distinct() []uint {
	seen := make(map[uint]struct{}, len(c))
	out := make([]uint, 0, len(c))
	for _, id := range c {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
