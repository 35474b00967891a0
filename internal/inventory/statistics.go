package inventory

import "github.com/shopspring/decimal"

// computeStatistics calcula a visão agregada a partir do estado atual, sem cache.
func computeStatistics(catalog *Catalog, queue *OrderQueue) Statistics {
	stats := Statistics{
		TotalValue:    decimal.Zero,
		PendingOrders: queue.Len(),
	}

	categories := make(map[string]struct{})
	catalog.products.Scan(func(_ int64, p *Product) bool {
		stats.TotalProducts++
		stats.TotalQuantity += int64(p.Quantity)
		stats.TotalValue = stats.TotalValue.Add(p.Value())
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}
		return true
	})
	stats.Categories = len(categories)

	return stats
}
