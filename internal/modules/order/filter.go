package order

import "strings"

// FilterAll is the status filter value that matches every status.
const FilterAll = "all"

// Filter applies f to orders. Vendor matches as a case-insensitive
// substring of the vendor name or email; date bounds compare orderDate
// lexically, which is correct for YYYY-MM-DD strings.
func Filter(orders []Order, f Filters) []Order {
	filtered := orders

	if f.Vendor != "" {
		needle := strings.ToLower(f.Vendor)
		filtered = keep(filtered, func(o Order) bool {
			return strings.Contains(strings.ToLower(o.VendorName), needle) ||
				strings.Contains(strings.ToLower(o.VendorEmail), needle)
		})
	}
	if f.Status != "" && f.Status != FilterAll {
		filtered = keep(filtered, func(o Order) bool { return string(o.Status) == f.Status })
	}
	if f.DateFrom != "" {
		filtered = keep(filtered, func(o Order) bool { return o.OrderDate >= f.DateFrom })
	}
	if f.DateTo != "" {
		filtered = keep(filtered, func(o Order) bool { return o.OrderDate <= f.DateTo })
	}
	return filtered
}

func keep(orders []Order, pred func(Order) bool) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if pred(o) {
			out = append(out, o)
		}
	}
	return out
}

// paginate slices one page out of orders. Out-of-range pages yield an empty
// slice, never an error.
func paginate(orders []Order, page, size int) []Order {
	start := (page - 1) * size
	if start >= len(orders) {
		return []Order{}
	}
	end := start + size
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end]
}
