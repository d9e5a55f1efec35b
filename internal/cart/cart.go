package cart

import "github.com/roach88/storefront/internal/model"

// State is the cart: product name -> line item.
// The zero value is the empty cart.
type State struct {
	items map[string]model.CartLineItem
	order []string // names in first-add order
}

// Empty returns the empty cart.
func Empty() State {
	return State{}
}

// AddItem adds one unit of p.
//
// If a line with p.Name exists its Count is incremented and its Price is left
// as first recorded. Otherwise a new line with Count 1 is appended.
func AddItem(s State, p model.ProductSummary) State {
	next := State{
		items: make(map[string]model.CartLineItem, len(s.items)+1),
		order: s.order,
	}
	for name, item := range s.items {
		next.items[name] = item
	}

	if item, ok := next.items[p.Name]; ok {
		item.Count++
		next.items[p.Name] = item
		return next
	}

	next.items[p.Name] = model.CartLineItem{Name: p.Name, Price: p.Price, Count: 1}
	// Full slice expression forces a copy on append so s.order is never shared
	// with a longer tail.
	next.order = append(s.order[:len(s.order):len(s.order)], p.Name)
	return next
}

// Clear discards every line.
func Clear(State) State {
	return State{}
}

// Total returns the sum of price*count over all lines; 0 for an empty cart.
func Total(s State) int64 {
	var total int64
	for _, item := range s.items {
		total += LineTotal(item)
	}
	return total
}

// LineTotal is the cost column of one cart row.
func LineTotal(item model.CartLineItem) int64 {
	return item.Price * int64(item.Count)
}

// DistinctCount is the number of lines, not the sum of quantities.
// It is the figure shown next to the cart link.
func DistinctCount(s State) int {
	return len(s.items)
}

// Contains reports whether a line for name exists.
func Contains(s State, name string) bool {
	_, ok := s.items[name]
	return ok
}

// Item returns the line for name.
func Item(s State, name string) (model.CartLineItem, bool) {
	item, ok := s.items[name]
	return item, ok
}

// Items returns a copy of all lines in first-add order.
func Items(s State) []model.CartLineItem {
	out := make([]model.CartLineItem, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.items[name])
	}
	return out
}

// FromItems rebuilds a cart from lines, e.g. when replaying a journal.
// Later lines with a name already seen are merged by adding their counts.
// Lines with Count < 1 are dropped.
func FromItems(items []model.CartLineItem) State {
	s := State{items: make(map[string]model.CartLineItem, len(items))}
	for _, item := range items {
		if item.Count < 1 {
			continue
		}
		if existing, ok := s.items[item.Name]; ok {
			existing.Count += item.Count
			s.items[item.Name] = existing
			continue
		}
		s.items[item.Name] = item
		s.order = append(s.order, item.Name)
	}
	return s
}
