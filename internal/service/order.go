package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
	TxOpts pkgdb.TxOptions
}

// placed is what one checkout transaction wrote.
type placed struct {
	order   models.Order
	items   []models.OrderItem
	payment models.Payment
	address models.Address
	lineIDs []uint
	cartID  uint
}

// PlaceOrder snapshots the caller's cart into an order with a pending
// payment. Stock was already taken when the lines were added, so it is not
// touched here, and the cart itself is left for the caller to clear.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, req transport.OrderRequest) (*transport.OrderView, error) {
	var p *placed
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		var err error
		p, err = s.place(ctx, tx, userID, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.placedView(ctx, userID, p), nil
}

// Checkout places the order and removes exactly the ordered lines from the
// cart in the same transaction. Their reserved stock moves to the order.
func (s *OrderService) Checkout(ctx context.Context, userID uint, req transport.OrderRequest) (*transport.OrderView, error) {
	var p *placed
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		var err error
		if p, err = s.place(ctx, tx, userID, req); err != nil {
			return err
		}
		if err := tx.DeleteCartItemsByIDs(ctx, p.cartID, p.lineIDs); err != nil {
			return err
		}
		_, _, err = tx.RecomputeCartTotal(ctx, p.cartID)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicCart, strconv.FormatUint(uint64(userID), 10), mykafka.CartEvent{
		Type:     mykafka.EventCartCleared,
		UserID:   userID,
		CartID:   p.cartID,
		Quantity: len(p.lineIDs),
		At:       time.Now().UTC(),
	})
	return s.placedView(ctx, userID, p), nil
}

func (s *OrderService) place(ctx context.Context, tx *repo.GormRepo, userID uint, req transport.OrderRequest) (*placed, error) {
	user, err := tx.GetUserByID(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, "User not found with id: %d", userID)
	}

	cart, err := tx.LockCartByUser(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var lines []models.CartItem
	if cart != nil {
		if lines, err = tx.LockCartItems(ctx, cart.ID); err != nil {
			return nil, err
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: Cart is null or empty", ErrNotFound)
	}

	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrInvalidArgument)
	}

	addr, err := tx.GetAddress(ctx, req.AddressID)
	if err != nil {
		return nil, orNotFound(err, "Address not found with id: %s", req.AddressID)
	}
	if addr.UserID != userID {
		return nil, fmt.Errorf("%w: Address not found with id: %s", ErrNotFound, req.AddressID)
	}

	ids := make([]uint, 0, len(lines))
	lineIDs := make([]uint, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		ids = append(ids, l.ProductID)
		lineIDs = append(lineIDs, l.ID)
		total = total.Add(l.TotalPrice)
	}
	products, err := tx.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	orderID, paymentID := uuid.New(), uuid.New()

	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			OrderID:     orderID,
			ProductID:   l.ProductID,
			ProductName: products[l.ProductID].Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.SinglePrice,
			Discount:    l.Discount,
			Price:       l.TotalPrice,
		})
	}
	if err := tx.CreateOrderItems(ctx, items); err != nil {
		return nil, err
	}

	order := models.Order{
		ID:         orderID,
		UserID:     userID,
		Email:      user.Email,
		OrderDate:  time.Now().UTC(),
		PaymentID:  paymentID,
		AddressID:  addr.ID,
		TotalPrice: total,
		Status:     models.OrderStatusPendingPayment,
	}
	if err := tx.CreateOrder(ctx, &order); err != nil {
		return nil, err
	}

	payment := models.Payment{
		ID:            paymentID,
		OrderID:       orderID,
		PaymentMethod: method,
	}
	if err := tx.CreatePayment(ctx, &payment); err != nil {
		return nil, err
	}

	return &placed{
		order:   order,
		items:   items,
		payment: payment,
		address: *addr,
		lineIDs: lineIDs,
		cartID:  cart.ID,
	}, nil
}

func (s *OrderService) placedView(ctx context.Context, userID uint, p *placed) *transport.OrderView {
	publish(ctx, s.Events, mykafka.TopicOrder, p.order.ID.String(), mykafka.OrderEvent{
		Type:          mykafka.EventOrderPlaced,
		OrderID:       p.order.ID,
		UserID:        userID,
		TotalPrice:    p.order.TotalPrice,
		PaymentMethod: p.payment.PaymentMethod,
		Items:         len(p.items),
		At:            p.order.OrderDate,
	})

	v := transport.ToOrderView(p.order, p.items, &p.payment, &p.address)
	return &v
}

// GetOrder hides other users' orders behind NotFound.
func (s *OrderService) GetOrder(ctx context.Context, userID uint, orderID uuid.UUID) (*transport.OrderView, error) {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, orNotFound(err, "Order not found with id: %s", orderID)
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("%w: Order not found with id: %s", ErrNotFound, orderID)
	}

	v, err := s.view(ctx, *o)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint, page util.Page) (*transport.OrderListView, error) {
	total, orders, err := s.Repo.ListOrders(ctx, userID, page)
	if err != nil {
		return nil, err
	}

	out := &transport.OrderListView{
		Orders:   make([]transport.OrderView, 0, len(orders)),
		PageInfo: transport.NewPageInfo(page, total),
	}
	for _, o := range orders {
		v, err := s.view(ctx, o)
		if err != nil {
			return nil, err
		}
		out.Orders = append(out.Orders, v)
	}
	return out, nil
}

// view loads the order's items, payment and address. The address may have
// been deleted after the order was placed.
func (s *OrderService) view(ctx context.Context, o models.Order) (transport.OrderView, error) {
	items, err := s.Repo.OrderItems(ctx, o.ID)
	if err != nil {
		return transport.OrderView{}, err
	}

	payment, err := s.Repo.PaymentForOrder(ctx, o.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return transport.OrderView{}, err
	}

	address, err := s.Repo.GetAddress(ctx, o.AddressID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return transport.OrderView{}, err
	}

	return transport.ToOrderView(o, items, payment, address), nil
}
