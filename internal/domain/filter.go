package domain

import (
	"slices"
	"strings"
)

// FilterCheckouts applies the filter to an already newest-first slice and
// returns a new slice. The mine-first reorder is stable so relative date
// order is preserved within each group.
func FilterCheckouts(checkouts []ExtendedCheckout, filter CheckoutFilter) []ExtendedCheckout {
	result := make([]ExtendedCheckout, 0, len(checkouts))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	for _, c := range checkouts {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.OwnerEmail != "" && !strings.EqualFold(c.CheckedOutByEmail, filter.OwnerEmail) {
			continue
		}
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		result = append(result, c)
	}

	if filter.MineFirst && filter.CurrentEmail != "" {
		current := strings.ToLower(strings.TrimSpace(filter.CurrentEmail))
		slices.SortStableFunc(result, func(a, b ExtendedCheckout) int {
			aMine := strings.ToLower(a.CheckedOutByEmail) == current
			bMine := strings.ToLower(b.CheckedOutByEmail) == current
			switch {
			case aMine == bMine:
				return 0
			case aMine:
				return -1
			default:
				return 1
			}
		})
	}

	return result
}

func matchesSearch(c ExtendedCheckout, search string) bool {
	if strings.Contains(strings.ToLower(c.MasterBarcode), search) ||
		strings.Contains(strings.ToLower(c.Purpose), search) ||
		strings.Contains(strings.ToLower(c.CheckedOutBy), search) {
		return true
	}
	for _, item := range c.Items {
		if strings.Contains(strings.ToLower(item.Name), search) {
			return true
		}
	}
	return false
}
