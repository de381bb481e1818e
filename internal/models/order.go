package models

import (
	"encoding/json"
	"time"
)

// Order statuses. The only transition is pending -> Paid.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "Paid"
)

// Order is a checkout attempt owned by one user.
type Order struct {
	OrderID          string      `gorm:"primaryKey" bson:"orderId" json:"orderId"`
	UserID           string      `gorm:"type:uuid;index" bson:"-" json:"-"`
	Amount           float64     `bson:"amount" json:"amount"`
	Currency         string      `bson:"currency" json:"currency"`
	Status           string      `gorm:"index" bson:"status" json:"status"`
	Date             time.Time   `bson:"date" json:"date"`
	Items            []OrderItem `gorm:"serializer:json;type:jsonb" bson:"items" json:"items"`
	PaymentSessionID string      `bson:"paymentSessionId,omitempty" json:"paymentSessionId,omitempty"`
	PaidAt           *time.Time  `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}

// IsPaid reports whether the order reached its terminal state.
func (o Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// OrderItem is the snapshot of a cart line captured when the order is created.
// Cart fields beyond the typed ones (oldPrice, ratings, ...) are kept in Extra.
type OrderItem struct {
	Name     string         `bson:"name" json:"name"`
	Price    FlexFloat      `bson:"price" json:"price"`
	Quantity FlexFloat      `bson:"quantity" json:"quantity"`
	Img      string         `bson:"img,omitempty" json:"img,omitempty"`
	Extra    map[string]any `bson:",inline" json:"-"`
}

var orderItemFields = []string{"name", "price", "quantity", "img"}

type orderItemJSON OrderItem

// UnmarshalJSON decodes the typed fields and collects the rest into Extra.
func (i *OrderItem) UnmarshalJSON(data []byte) error {
	var typed orderItemJSON
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range orderItemFields {
		delete(all, key)
	}
	typed.Extra = nil
	if len(all) > 0 {
		typed.Extra = all
	}

	*i = OrderItem(typed)
	return nil
}

// MarshalJSON writes Extra alongside the typed fields. Typed fields win on
// key collisions.
func (i OrderItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Extra)+len(orderItemFields))
	for k, v := range i.Extra {
		out[k] = v
	}
	out["name"] = i.Name
	out["price"] = float64(i.Price)
	out["quantity"] = float64(i.Quantity)
	if i.Img != "" {
		out["img"] = i.Img
	}
	return json.Marshal(out)
}
