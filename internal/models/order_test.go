package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestOrderItemKeepsCartFields(t *testing.T) {
	raw := `{"name":"Ring","price":"1,299","quantity":2,"img":"/img/r.png","oldPrice":"1599","ratings":"★★★★☆ (4.3/5)"}`

	var item OrderItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	assert.Equal(t, "Ring", item.Name)
	assert.Equal(t, FlexFloat(1), item.Price)
	assert.Equal(t, FlexFloat(2), item.Quantity)
	assert.Equal(t, map[string]any{"oldPrice": "1599", "ratings": "★★★★☆ (4.3/5)"}, item.Extra)

	out, err := json.Marshal(item)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "1599", back["oldPrice"])
	assert.Equal(t, "★★★★☆ (4.3/5)", back["ratings"])
	assert.Equal(t, 2.0, back["quantity"])

	doc, err := bson.Marshal(item)
	require.NoError(t, err)
	var stored bson.M
	require.NoError(t, bson.Unmarshal(doc, &stored))
	assert.Equal(t, "1599", stored["oldPrice"])
	assert.Equal(t, "Ring", stored["name"])
}

func TestOrderItemWithoutExtrasHasNilExtra(t *testing.T) {
	var item OrderItem
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ring","price":10}`), &item))
	assert.Nil(t, item.Extra)
}
