package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// Sort columns each list endpoint accepts, keyed by their API name.
var (
	CategorySortColumns = map[string]string{
		"id":   "id",
		"name": "name",
	}
	ProductSortColumns = map[string]string{
		"id":            "id",
		"name":          "name",
		"price":         "price",
		"discount":      "discount",
		"specialPrice":  "special_price",
		"stockQuantity": "stock",
	}
	UserSortColumns = map[string]string{
		"id":       "id",
		"username": "username",
		"email":    "email",
	}
)

var hundred = decimal.NewFromInt(100)

// SpecialPrice is the unit price after the percentage discount, rounded to cents.
func SpecialPrice(price, discount decimal.Decimal) decimal.Decimal {
	return price.Sub(price.Mul(discount).Div(hundred)).Round(2)
}

// publish is best effort: the write it describes has already committed.
func publish(ctx context.Context, p mykafka.Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "key", key, "error", err)
	}
}
