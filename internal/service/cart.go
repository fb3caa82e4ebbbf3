package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

// CartService reserves stock when a line is added and releases it when the
// line is removed. Placing an order turns the reservation into the purchase.
// Changes lock the cart row first, then its lines, then the product.
type CartService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
	TxOpts pkgdb.TxOptions
}

func outOfStock(p *models.Product, requested int) error {
	return fmt.Errorf("%w: Product %s is out of stock. Available: %d, Required: %d",
		ErrOutOfStock, p.Name, p.Stock, requested)
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (*transport.CartItemView, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidArgument)
	}

	var (
		view   transport.CartItemView
		cartID uint
	)
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		if _, err := tx.GetOrCreateCart(ctx, userID); err != nil {
			return err
		}
		cart, err := tx.LockCartByUser(ctx, userID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return orNotFound(err, "Product not found with id: %d", productID)
		}

		item, err := tx.FindCartItemByProduct(ctx, cart.ID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		required := quantity
		if item != nil {
			required += item.Quantity
		}
		if product.Stock < required {
			return outOfStock(product, required)
		}

		if err := tx.DecrementStock(ctx, productID, quantity); err != nil {
			if errors.Is(err, repo.ErrInsufficientStock) {
				return outOfStock(product, quantity)
			}
			return err
		}
		product.Stock -= quantity

		if item != nil {
			item.Quantity += quantity
			item.TotalPrice = item.SinglePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if err := tx.SaveCartItem(ctx, item); err != nil {
				return err
			}
		} else {
			unit := SpecialPrice(product.Price, product.Discount)
			item = &models.CartItem{
				CartID:      cart.ID,
				ProductID:   productID,
				SinglePrice: unit,
				Discount:    product.Discount,
				Quantity:    quantity,
				TotalPrice:  unit.Mul(decimal.NewFromInt(int64(quantity))),
			}
			if err := tx.CreateCartItem(ctx, item); err != nil {
				return orConflict(err, "Product %d is already in the cart", productID)
			}
		}

		if _, _, err := tx.RecomputeCartTotal(ctx, cart.ID); err != nil {
			return err
		}

		view = transport.ToCartItemView(*item, product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, userID, mykafka.CartEvent{
		Type:      mykafka.EventCartItemAdded,
		UserID:    userID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return &view, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, cartItemID uint) error {
	var removed models.CartItem
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		item, err := s.lockItem(ctx, tx, userID, cartItemID)
		if err != nil {
			return err
		}

		// the product may have been deleted since; nothing to restore then
		if err := tx.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		if err := tx.DeleteCartItem(ctx, item.ID); err != nil {
			return orNotFound(err, "CartItem not found with id: %d", cartItemID)
		}
		if _, _, err := tx.RecomputeCartTotal(ctx, item.CartID); err != nil {
			return err
		}

		removed = *item
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, userID, mykafka.CartEvent{
		Type:      mykafka.EventCartItemRemoved,
		UserID:    userID,
		CartID:    removed.CartID,
		ProductID: removed.ProductID,
		Quantity:  removed.Quantity,
	})
	return nil
}

// UpdateCartItemQuantity sets the line to quantity, reserving or releasing
// the difference. Zero removes the line and returns a nil view.
func (s *CartService) UpdateCartItemQuantity(ctx context.Context, userID, cartItemID uint, quantity int) (*transport.CartItemView, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: Quantity cannot be negative", ErrInvalidArgument)
	}
	if quantity == 0 {
		return nil, s.RemoveFromCart(ctx, userID, cartItemID)
	}

	var view transport.CartItemView
	var updated models.CartItem
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		item, err := s.lockItem(ctx, tx, userID, cartItemID)
		if err != nil {
			return err
		}

		product, err := tx.LockProduct(ctx, item.ProductID)
		if err != nil {
			return orNotFound(err, "Product not found with id: %d", item.ProductID)
		}

		switch delta := quantity - item.Quantity; {
		case delta > 0:
			if err := tx.DecrementStock(ctx, product.ID, delta); err != nil {
				if errors.Is(err, repo.ErrInsufficientStock) {
					return outOfStock(product, delta)
				}
				return err
			}
			product.Stock -= delta
		case delta < 0:
			if err := tx.IncrementStock(ctx, product.ID, -delta); err != nil {
				return err
			}
			product.Stock -= delta
		}

		item.Quantity = quantity
		item.TotalPrice = item.SinglePrice.Mul(decimal.NewFromInt(int64(quantity)))
		if err := tx.SaveCartItem(ctx, item); err != nil {
			return err
		}
		if _, _, err := tx.RecomputeCartTotal(ctx, item.CartID); err != nil {
			return err
		}

		updated = *item
		view = transport.ToCartItemView(*item, product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, userID, mykafka.CartEvent{
		Type:      mykafka.EventCartItemUpdated,
		UserID:    userID,
		CartID:    updated.CartID,
		ProductID: updated.ProductID,
		Quantity:  updated.Quantity,
	})
	return &view, nil
}

// ClearCart empties the cart and puts the reserved units back in stock.
func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	var (
		cleared int
		cartID  uint
	)
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		cart, err := tx.LockCartByUser(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		cartID = cart.ID

		items, err := tx.LockCartItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 && cart.TotalPrice.IsZero() {
			return nil
		}

		for _, it := range items {
			if err := tx.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		if err := tx.DeleteCartItems(ctx, cart.ID); err != nil {
			return err
		}
		if _, _, err := tx.RecomputeCartTotal(ctx, cart.ID); err != nil {
			return err
		}

		cleared = len(items)
		return nil
	})
	if err != nil {
		return err
	}

	if cleared > 0 {
		s.publish(ctx, userID, mykafka.CartEvent{
			Type:     mykafka.EventCartCleared,
			UserID:   userID,
			CartID:   cartID,
			Quantity: cleared,
		})
	}
	return nil
}

// GetCartContent creates an empty cart on first access.
func (s *CartService) GetCartContent(ctx context.Context, userID uint) (*transport.CartContentView, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.Repo.CartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := &transport.CartContentView{
		ID:         cart.ID,
		Quantity:   len(items),
		TotalPrice: cart.TotalPrice,
		CartItems:  make([]transport.CartItemView, 0, len(items)),
	}
	for _, it := range items {
		var product *models.Product
		if p, ok := products[it.ProductID]; ok {
			product = &p
		}
		out.CartItems = append(out.CartItems, transport.ToCartItemView(it, product))
	}
	return out, nil
}

// GetTotals reports zeroes for a user without a cart.
func (s *CartService) GetTotals(ctx context.Context, userID uint) (*transport.CartTotalsView, error) {
	out := &transport.CartTotalsView{TotalPrice: decimal.Zero}

	cart, err := s.Repo.GetCartByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := s.Repo.CartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	out.TotalPrice = cart.TotalPrice
	out.TotalQuantity = len(items)
	return out, nil
}

func (s *CartService) lockItem(ctx context.Context, tx *repo.GormRepo, userID, cartItemID uint) (*models.CartItem, error) {
	cart, err := tx.LockCartByUser(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, "CartItem not found with id: %d", cartItemID)
	}
	item, err := tx.GetCartItem(ctx, cart.ID, cartItemID)
	if err != nil {
		return nil, orNotFound(err, "CartItem not found with id: %d", cartItemID)
	}
	return item, nil
}

func (s *CartService) publish(ctx context.Context, userID uint, ev mykafka.CartEvent) {
	ev.At = time.Now().UTC()
	publish(ctx, s.Events, mykafka.TopicCart, strconv.FormatUint(uint64(userID), 10), ev)
}
