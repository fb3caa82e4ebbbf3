package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// AddressService keeps exactly one default address per user who has any.
type AddressService struct {
	Repo   *repo.GormRepo
	TxOpts pkgdb.TxOptions
}

func (s *AddressService) CreateAddress(ctx context.Context, userID uint, req transport.AddressRequest) (*transport.AddressView, error) {
	var created models.Address
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		if err := lockOwner(ctx, tx, userID); err != nil {
			return err
		}

		n, err := tx.CountAddresses(ctx, userID)
		if err != nil {
			return err
		}

		a := models.Address{
			UserID:         userID,
			Street:         req.Street,
			City:           req.City,
			Province:       req.Province,
			Country:        req.Country,
			PostalCode:     req.PostalCode,
			PhoneNumber:    req.PhoneNumber,
			DefaultAddress: n == 0 || req.DefaultAddress,
		}
		if err := tx.CreateAddress(ctx, &a); err != nil {
			return err
		}
		if a.DefaultAddress && n > 0 {
			if err := tx.ClearDefaultAddresses(ctx, userID, a.ID); err != nil {
				return err
			}
		}

		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := transport.ToAddressView(created)
	return &v, nil
}

// UpdateAddress overwrites the fields. Only a false-to-true change of the
// default flag is honored; the current default stays default until another
// address takes over.
func (s *AddressService) UpdateAddress(ctx context.Context, userID uint, id uuid.UUID, req transport.AddressRequest) (*transport.AddressView, error) {
	var saved models.Address
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		if err := lockOwner(ctx, tx, userID); err != nil {
			return err
		}

		a, err := s.owned(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if req.DefaultAddress && !a.DefaultAddress {
			if err := tx.ClearDefaultAddresses(ctx, userID, a.ID); err != nil {
				return err
			}
			a.DefaultAddress = true
		}

		a.Street = req.Street
		a.City = req.City
		a.Province = req.Province
		a.Country = req.Country
		a.PostalCode = req.PostalCode
		a.PhoneNumber = req.PhoneNumber

		if err := tx.SaveAddress(ctx, a); err != nil {
			return err
		}
		saved = *a
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := transport.ToAddressView(saved)
	return &v, nil
}

func (s *AddressService) GetAddresses(ctx context.Context, userID uint) (*transport.AddressListView, error) {
	if _, err := s.Repo.GetUserByID(ctx, userID); err != nil {
		return nil, orNotFound(err, "User not found with id: %d", userID)
	}

	items, err := s.Repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &transport.AddressListView{
		Addresses:      make([]transport.AddressView, 0, len(items)),
		UserID:         userID,
		TotalAddresses: len(items),
	}
	for _, a := range items {
		out.Addresses = append(out.Addresses, transport.ToAddressView(a))
	}
	return out, nil
}

func (s *AddressService) SetDefaultAddress(ctx context.Context, userID uint, id uuid.UUID) (*transport.AddressView, error) {
	var target models.Address
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		if err := lockOwner(ctx, tx, userID); err != nil {
			return err
		}

		n, err := tx.CountAddresses(ctx, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: User %d has no addresses", ErrNotFound, userID)
		}

		a, err := s.owned(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if err := tx.ClearDefaultAddresses(ctx, userID, a.ID); err != nil {
			return err
		}
		if err := tx.SetDefaultAddress(ctx, a.ID, true); err != nil {
			return err
		}

		a.DefaultAddress = true
		target = *a
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := transport.ToAddressView(target)
	return &v, nil
}

// GetDefaultAddress falls back to the oldest address when none is flagged,
// which only happens if rows were edited outside this service.
func (s *AddressService) GetDefaultAddress(ctx context.Context, userID uint) (*transport.AddressView, error) {
	items, err := s.Repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: User %d has no addresses", ErrNotFound, userID)
	}

	for _, a := range items {
		if a.DefaultAddress {
			v := transport.ToAddressView(a)
			return &v, nil
		}
	}

	logging.FromContext(ctx).With("svc", "address").Warn("default_address_missing", "user_id", userID, "fallback", items[0].ID)
	v := transport.ToAddressView(items[0])
	return &v, nil
}

// DeleteAddress promotes the oldest remaining address when the default is removed.
func (s *AddressService) DeleteAddress(ctx context.Context, userID uint, id uuid.UUID) error {
	return s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		if err := lockOwner(ctx, tx, userID); err != nil {
			return err
		}

		a, err := s.owned(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if err := tx.DeleteAddress(ctx, a.ID); err != nil {
			return orNotFound(err, "Address not found with id: %s", id)
		}
		if !a.DefaultAddress {
			return nil
		}

		rest, err := tx.ListAddresses(ctx, userID)
		if err != nil {
			return err
		}
		if len(rest) == 0 {
			return nil
		}
		return tx.SetDefaultAddress(ctx, rest[0].ID, true)
	})
}

func (s *AddressService) owned(ctx context.Context, tx *repo.GormRepo, userID uint, id uuid.UUID) (*models.Address, error) {
	a, err := tx.GetAddress(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Address not found with id: %s", id)
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("%w: Address not found with id: %s", ErrNotFound, id)
	}
	return a, nil
}

// lockOwner serializes address changes per user so the default flag stays
// on exactly one row.
func lockOwner(ctx context.Context, tx *repo.GormRepo, userID uint) error {
	if _, err := tx.LockUser(ctx, userID); err != nil {
		return orNotFound(err, "User not found with id: %d", userID)
	}
	return nil
}
