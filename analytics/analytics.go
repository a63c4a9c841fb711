// Package analytics aggregates the order log for the admin dashboard.
package analytics

import (
	"sort"
	"time"

	"go_trial/cravewave/models"

	"github.com/shopspring/decimal"
)

const DefaultDays = 7

type DailySales struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type CategoryShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type Report struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	ActiveRestaurants int             `json:"active_restaurants"`
	Daily             []DailySales    `json:"daily"`
	Categories        []CategoryShare `json:"categories"`
}

// Summarize builds a report over orders. Cancelled orders count towards
// TotalOrders but not towards revenue, daily sales or categories. Days are
// UTC calendar days ending at now, oldest first.
func Summarize(orders []models.Order, activeRestaurants int, now time.Time, days int) Report {
	if days <= 0 {
		days = DefaultDays
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	first := today.AddDate(0, 0, -(days - 1))

	daily := make([]DailySales, days)
	for i := range daily {
		daily[i] = DailySales{Date: first.AddDate(0, 0, i).Format(time.DateOnly), Amount: decimal.Zero}
	}

	report := Report{
		TotalRevenue:      decimal.Zero,
		TotalOrders:       len(orders),
		ActiveRestaurants: activeRestaurants,
		Daily:             daily,
	}
	byCategory := map[string]int{}
	for _, o := range orders {
		if o.Status == models.StatusCancelled {
			continue
		}
		report.TotalRevenue = report.TotalRevenue.Add(o.Total)

		created := o.CreatedAt.UTC()
		day := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, time.UTC)
		if idx := int(day.Sub(first).Hours() / 24); !day.Before(first) && idx < days {
			daily[idx].Amount = daily[idx].Amount.Add(o.Total)
		}
		for _, l := range o.Items {
			name := l.Category
			if name == "" {
				name = "Other"
			}
			byCategory[name] += l.Quantity
		}
	}

	report.Categories = make([]CategoryShare, 0, len(byCategory))
	for name, v := range byCategory {
		report.Categories = append(report.Categories, CategoryShare{Name: name, Value: v})
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		a, b := report.Categories[i], report.Categories[j]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.Name < b.Name
	})
	return report
}
