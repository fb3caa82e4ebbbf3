package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type GormRepo struct {
	DB *gorm.DB
}

// Tx runs fn against a repo bound to a single transaction, retrying on
// transient postgres failures.
func (r *GormRepo) Tx(ctx context.Context, opts pkgdb.TxOptions, fn func(tx *GormRepo) error) error {
	return pkgdb.WithRetry(ctx, r.DB, opts, func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) Ping(ctx context.Context) error {
	return pkgdb.Ping(ctx, r.DB)
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return err
	}
	r := &GormRepo{DB: db}
	return r.EnsureRoles(ctx, models.RoleUser, models.RoleAdmin, models.RoleSeller)
}
