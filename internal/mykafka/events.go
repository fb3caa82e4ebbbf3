package mykafka

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartEvent struct {
	Type      string    `json:"type"`
	UserID    uint      `json:"userId"`
	CartID    uint      `json:"cartId"`
	ProductID uint      `json:"productId,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	At        time.Time `json:"at"`
}

type OrderEvent struct {
	Type          string          `json:"type"`
	OrderID       uuid.UUID       `json:"orderId"`
	UserID        uint            `json:"userId"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	PaymentMethod string          `json:"paymentMethod"`
	Items         int             `json:"items"`
	At            time.Time       `json:"at"`
}

type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID uint      `json:"productId"`
	Name      string    `json:"name,omitempty"`
	At        time.Time `json:"at"`
}

type UserEvent struct {
	Type     string    `json:"type"`
	UserID   uint      `json:"userId"`
	Username string    `json:"username,omitempty"`
	At       time.Time `json:"at"`
}

const (
	EventCartItemAdded   = "cart_item_added"
	EventCartItemUpdated = "cart_item_updated"
	EventCartItemRemoved = "cart_item_removed"
	EventCartCleared     = "cart_cleared"
	EventOrderPlaced     = "order_placed"
	EventProductCreated  = "product_created"
	EventProductUpdated  = "product_updated"
	EventProductDeleted  = "product_deleted"
	EventUserRegistered  = "user_registered"
	EventUserDeleted     = "user_deleted"
)
