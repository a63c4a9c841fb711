package utils

import (
	"bytes"
	"testing"
	"time"

	"go_trial/cravewave/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

func encode(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	vw, err := bsonrw.NewBSONValueWriter(&buf)
	require.NoError(t, err)
	enc, err := bson.NewEncoder(vw)
	require.NoError(t, err)
	require.NoError(t, enc.SetRegistry(Registry()))
	require.NoError(t, enc.Encode(v))
	return buf.Bytes()
}

func decode(t *testing.T, raw []byte, v any) {
	t.Helper()
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(raw))
	require.NoError(t, err)
	require.NoError(t, dec.SetRegistry(Registry()))
	require.NoError(t, dec.Decode(v))
}

func TestOrderRoundTripKeepsExactMoney(t *testing.T) {
	order := models.Order{
		ID:           "o1",
		CustomerID:   "u1",
		RestaurantID: "res1",
		Items: []models.OrderLine{
			{ItemID: "m1", Name: "Margherita Pizza", Category: "Pizza", Price: decimal.RequireFromString("14.10"), Quantity: 1},
			{ItemID: "m2", Name: "Spaghetti Carbonara", Category: "Pasta", Price: decimal.RequireFromString("15.95"), Quantity: 2},
		},
		Total:           decimal.RequireFromString("46.00"),
		Status:          models.StatusPlaced,
		CreatedAt:       time.Date(2024, 5, 1, 12, 30, 15, 123000000, time.UTC),
		DeliveryAddress: "101 User Ln",
	}

	raw := encode(t, order)
	assert.Equal(t, bsontype.Decimal128, bson.Raw(raw).Lookup("total").Type)

	var got models.Order
	decode(t, raw, &got)

	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, order.Status, got.Status)
	assert.True(t, order.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, order.Total.Equal(got.Total), got.Total.String())
	require.Len(t, got.Items, 2)
	for i := range order.Items {
		assert.True(t, order.Items[i].Price.Equal(got.Items[i].Price), got.Items[i].Price.String())
		assert.Equal(t, order.Items[i].Quantity, got.Items[i].Quantity)
	}
}

func TestDecodeDecimalFromLegacyNumbers(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"_id": "m1", "price": int32(12), "min_order": 15.5})
	require.NoError(t, err)

	var item models.MenuItem
	decode(t, raw, &item)
	assert.True(t, decimal.NewFromInt(12).Equal(item.Price))

	var r models.Restaurant
	decode(t, raw, &r)
	assert.True(t, decimal.RequireFromString("15.5").Equal(r.MinOrder))
}
