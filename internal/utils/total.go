package utils

import "github.com/example/vajra/internal/models"

// CalculateTotal sums price times quantity over items. A missing or zero
// quantity counts as one and an unparseable price as zero.
func CalculateTotal(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		quantity := float64(item.Quantity)
		if quantity == 0 {
			quantity = 1
		}
		total += float64(item.Price) * quantity
	}
	return total
}
