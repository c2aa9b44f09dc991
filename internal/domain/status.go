package domain

import "time"

// DeriveStatus computes the aggregate checkout status from its item lines.
// Overdue applies only while nothing has been returned: once any unit comes
// back the checkout reads partial-return even past its expected date.
func DeriveStatus(items []CheckoutItemDetail, expectedReturnDate *time.Time, now time.Time) string {
	returned, remaining := 0, 0
	for _, item := range items {
		returned += item.ReturnedQuantity
		remaining += item.RemainingQuantity
	}

	switch {
	case len(items) > 0 && remaining == 0:
		return CheckoutStatusFullyReturned
	case returned == 0 && expectedReturnDate != nil && expectedReturnDate.Before(now):
		return CheckoutStatusOverdue
	case returned == 0:
		return CheckoutStatusActive
	default:
		return CheckoutStatusPartialReturn
	}
}

// RecalcTotals rewrites the checkout's aggregate counters as sums over its
// item lines and refreshes the derived status.
func RecalcTotals(c *ExtendedCheckout, now time.Time) {
	total, returned, remaining := 0, 0, 0
	for _, item := range c.Items {
		total += item.Quantity
		returned += item.ReturnedQuantity
		remaining += item.RemainingQuantity
	}
	c.TotalItems = total
	c.ReturnedItems = returned
	c.RemainingItems = remaining
	c.Status = DeriveStatus(c.Items, c.ExpectedReturnDate, now)
}
