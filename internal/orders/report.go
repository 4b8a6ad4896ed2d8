package orders

import (
	"context"
	"sort"
	"time"

	"floralie_back_end/internal/models"
)

// SalesReport agrège les ventes livrées sur une période.
type SalesReport struct {
	From           time.Time          `json:"from"`
	To             time.Time          `json:"to"`
	TotalSales     float64            `json:"total_sales"`
	TotalOrders    int                `json:"total_orders"`
	TotalCustomers int                `json:"total_customers"`
	TopProducts    []ProductSales     `json:"top_products"`
	DailySales     map[string]float64 `json:"daily_sales"`
}

type ProductSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Report calcule le rapport de ventes sur [from, to] à partir des
// commandes livrées. Par défaut : les 30 derniers jours.
func (s *Service) Report(ctx context.Context, from, to time.Time) (SalesReport, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}

	all, err := s.store.ListAll(ctx)
	if err != nil {
		return SalesReport{}, err
	}

	report := SalesReport{From: from, To: to, DailySales: map[string]float64{}}
	customers := map[string]struct{}{}
	quantities := map[string]int{}

	for _, order := range all {
		if order.Status != models.StatusDelivered {
			continue
		}
		if order.CreatedAt.Before(from) || order.CreatedAt.After(to) {
			continue
		}

		total := order.TotalPrice()
		report.TotalSales += total
		report.TotalOrders++
		report.DailySales[order.CreatedAt.Format("2006-01-02")] += total

		if order.UserID != "" {
			customers[order.UserID] = struct{}{}
		} else if order.ChatID != "" {
			customers["chat:"+order.ChatID] = struct{}{}
		}

		for _, item := range order.Items {
			quantities[item.Name] += item.Quantity
		}
	}
	report.TotalCustomers = len(customers)

	for name, qty := range quantities {
		report.TopProducts = append(report.TopProducts, ProductSales{Name: name, Quantity: qty})
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		if report.TopProducts[i].Quantity == report.TopProducts[j].Quantity {
			return report.TopProducts[i].Name < report.TopProducts[j].Name
		}
		return report.TopProducts[i].Quantity > report.TopProducts[j].Quantity
	})
	if len(report.TopProducts) > 10 {
		report.TopProducts = report.TopProducts[:10]
	}

	return report, nil
}
