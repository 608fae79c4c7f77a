// internal/models/order.go
package models

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	OrderStatusPending  = "pending"
	OrderStatusAccepted = "accepted"
	OrderStatusRejected = "rejected"
)

// Order — одна позиция заказа клиента в том виде, в каком её отдаёт API заказов.
type Order struct {
	OrderID         string `json:"orderid"`
	UserEmail       string `json:"useremail"`
	Status          string `json:"status"`
	Name            string `json:"name"`
	TableNo         string `json:"table_no"`
	ItemName        string `json:"item_name"`
	ItemDescription string `json:"item_description"`
	Price           string `json:"price"`
	Quantity        int    `json:"quantity"`
	Total           Amount `json:"total"`
	LocationName    string `json:"location_name"`
	CreatedAt       string `json:"created_at"`
}

type orderWire struct {
	OrderID         looseString `json:"orderid"`
	UserEmail       looseString `json:"useremail"`
	Status          looseString `json:"status"`
	Name            looseString `json:"name"`
	TableNo         looseString `json:"table_no"`
	ItemName        looseString `json:"item_name"`
	ItemDescription looseString `json:"item_description"`
	Price           looseString `json:"price"`
	Quantity        looseInt    `json:"quantity"`
	Total           Amount      `json:"total"`
	LocationName    looseString `json:"location_name"`
	CreatedAt       looseString `json:"created_at"`
}

// UnmarshalJSON принимает числа и строки в любом поле; посторонний тип даёт нулевое значение.
func (o *Order) UnmarshalJSON(data []byte) error {
	var w orderWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = Order{
		OrderID:         string(w.OrderID),
		UserEmail:       string(w.UserEmail),
		Status:          string(w.Status),
		Name:            string(w.Name),
		TableNo:         string(w.TableNo),
		ItemName:        string(w.ItemName),
		ItemDescription: string(w.ItemDescription),
		Price:           string(w.Price),
		Quantity:        int(w.Quantity),
		Total:           w.Total,
		LocationName:    string(w.LocationName),
		CreatedAt:       string(w.CreatedAt),
	}
	return nil
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedTime разбирает CreatedAt. Время без зоны читается в loc.
func (o Order) CreatedTime(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	raw := strings.TrimSpace(o.CreatedAt)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// KitchenTicket собирает тикет для кухни при подтверждении заказа.
func (o Order) KitchenTicket() KitchenTicket {
	return KitchenTicket{
		OrderID:         o.OrderID,
		UserEmail:       o.UserEmail,
		ItemName:        o.ItemName,
		ItemDescription: o.ItemDescription,
		ItemQuantity:    o.Quantity,
	}
}

// KitchenTicket — тело сообщения в очередь кухни.
type KitchenTicket struct {
	OrderID         string `json:"orderid"`
	UserEmail       string `json:"useremail"`
	ItemName        string `json:"item_name"`
	ItemDescription string `json:"item_description"`
	ItemQuantity    int    `json:"item_quantity"`
}

// Customer — строка списка клиентов, строится из всех заказов.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
