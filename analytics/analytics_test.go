package analytics

import (
	"testing"
	"time"

	"go_trial/cravewave/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(id string, at time.Time, status models.OrderStatus, lines ...models.OrderLine) models.Order {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return models.Order{ID: id, Items: lines, Total: total, Status: status, CreatedAt: at}
}

func line(category string, price int64, qty int) models.OrderLine {
	return models.OrderLine{Category: category, Price: decimal.NewFromInt(price), Quantity: qty}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 5, 7, 15, 0, 0, 0, time.UTC)
	orders := []models.Order{
		order("o1", now.Add(-time.Hour), models.StatusPlaced, line("Pizza", 14, 1), line("Pasta", 16, 2)),
		order("o2", now.AddDate(0, 0, -1), models.StatusDelivered, line("Pizza", 14, 2)),
		order("o3", now.AddDate(0, 0, -2), models.StatusCancelled, line("Sushi", 18, 5)),
		order("o4", now.AddDate(0, 0, -30), models.StatusDelivered, line("Burgers", 12, 1)),
	}

	r := Summarize(orders, 3, now, 7)

	assert.Equal(t, 4, r.TotalOrders)
	assert.Equal(t, 3, r.ActiveRestaurants)
	assert.True(t, decimal.NewFromInt(46+28+12).Equal(r.TotalRevenue), r.TotalRevenue.String())

	require.Len(t, r.Daily, 7)
	assert.Equal(t, "2024-05-01", r.Daily[0].Date)
	assert.Equal(t, "2024-05-07", r.Daily[6].Date)
	assert.True(t, decimal.NewFromInt(46).Equal(r.Daily[6].Amount))
	assert.True(t, decimal.NewFromInt(28).Equal(r.Daily[5].Amount))
	assert.True(t, r.Daily[4].Amount.IsZero())

	assert.Equal(t, []CategoryShare{
		{Name: "Pizza", Value: 3},
		{Name: "Pasta", Value: 2},
		{Name: "Burgers", Value: 1},
	}, r.Categories)
}

func TestSummarizeEmpty(t *testing.T) {
	r := Summarize(nil, 0, time.Now(), 0)
	assert.Len(t, r.Daily, DefaultDays)
	assert.True(t, r.TotalRevenue.IsZero())
	assert.NotNil(t, r.Categories)
	assert.Empty(t, r.Categories)
}
