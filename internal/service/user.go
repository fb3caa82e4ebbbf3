package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UserService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
	Search search.Index
	TxOpts pkgdb.TxOptions
}

func (s *UserService) ListUsers(ctx context.Context, page util.Page) (*transport.UserListView, error) {
	total, users, err := s.Repo.ListUsers(ctx, page)
	if err != nil {
		return nil, err
	}

	out := &transport.UserListView{
		Users:    make([]transport.UserView, 0, len(users)),
		PageInfo: transport.NewPageInfo(page, total),
	}
	for _, u := range users {
		out.Users = append(out.Users, transport.ToUserView(u))
	}
	return out, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*transport.UserView, error) {
	u, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "User not found with id: %d", id)
	}
	v := transport.ToUserView(*u)
	return &v, nil
}

// DeleteUser removes the user with everything it owns in one transaction.
// Cart reservations go back to stock first. Orders are kept.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	var (
		username string
		products []uint
	)
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		u, err := tx.GetUserByID(ctx, id)
		if err != nil {
			return orNotFound(err, "User not found with id: %d", id)
		}
		username = u.Username

		cart, err := tx.GetCartByUser(ctx, id)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if cart != nil {
			items, err := tx.CartItems(ctx, cart.ID)
			if err != nil {
				return err
			}
			for _, it := range items {
				if err := tx.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
			if err := tx.DeleteCartItems(ctx, cart.ID); err != nil {
				return err
			}
			if err := tx.DeleteCart(ctx, cart.ID); err != nil {
				return err
			}
		}

		if err := tx.DeleteAddressesByUser(ctx, id); err != nil {
			return err
		}

		products, err = tx.ProductIDsBySeller(ctx, id)
		if err != nil {
			return err
		}
		for _, pid := range products {
			if _, err := deleteProduct(ctx, tx, pid); err != nil {
				return err
			}
		}

		return orNotFound(tx.DeleteUser(ctx, id), "User not found with id: %d", id)
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, pid := range products {
		if s.Search != nil {
			if err := s.Search.Delete(ctx, pid); err != nil {
				logging.FromContext(ctx).With("svc", "user").Warn("search_delete_failed", "product_id", pid, "error", err)
			}
		}
		publish(ctx, s.Events, mykafka.TopicProduct, strconv.FormatUint(uint64(pid), 10), mykafka.ProductEvent{
			Type:      mykafka.EventProductDeleted,
			ProductID: pid,
			At:        now,
		})
	}
	publish(ctx, s.Events, mykafka.TopicUser, strconv.FormatUint(uint64(id), 10), mykafka.UserEvent{
		Type:     mykafka.EventUserDeleted,
		UserID:   id,
		Username: username,
		At:       now,
	})
	return nil
}
