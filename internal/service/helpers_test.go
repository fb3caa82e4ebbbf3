package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/repotest"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type env struct {
	Repo     *repo.GormRepo
	Events   *mykafka.Recorder
	Denylist *tokens.MemoryDenylist

	Cart    *service.CartService
	Order   *service.OrderService
	Address *service.AddressService
	Catalog *service.CatalogService
	Auth    *service.AuthService
	Users   *service.UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvOn(t, repotest.NewRepo(t))
}

func newEnvOn(t *testing.T, r *repo.GormRepo) *env {
	t.Helper()

	rec := &mykafka.Recorder{}
	deny := tokens.NewMemoryDenylist()
	opts := pkgdb.DefaultTxOptions()

	return &env{
		Repo:     r,
		Events:   rec,
		Denylist: deny,
		Cart:     &service.CartService{Repo: r, Events: rec, TxOpts: opts},
		Order:    &service.OrderService{Repo: r, Events: rec, TxOpts: opts},
		Address:  &service.AddressService{Repo: r, TxOpts: opts},
		Catalog:  &service.CatalogService{Repo: r, Events: rec, TxOpts: opts},
		Auth: &service.AuthService{
			Repo:      r,
			Events:    rec,
			Denylist:  deny,
			JWTSecret: []byte("test-jwt-secret"),
			TokenTTL:  time.Hour,
		},
		Users: &service.UserService{Repo: r, Events: rec, TxOpts: opts},
	}
}

func (e *env) user(t *testing.T, username string) *models.User {
	t.Helper()

	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, e.Repo.CreateUser(context.Background(), u))
	return u
}

func (e *env) product(t *testing.T, name string, stock int, price string) *models.Product {
	t.Helper()

	ctx := context.Background()
	cat, err := e.Repo.GetCategoryByName(ctx, "general")
	if err != nil {
		cat = &models.Category{Name: "general"}
		require.NoError(t, e.Repo.CreateCategory(ctx, cat))
	}

	p := &models.Product{
		CategoryID:   cat.ID,
		Name:         name,
		Stock:        stock,
		Price:        decimal.RequireFromString(price),
		Discount:     decimal.Zero,
		SpecialPrice: decimal.RequireFromString(price),
	}
	require.NoError(t, e.Repo.CreateProduct(ctx, p))
	return p
}

func (e *env) stock(t *testing.T, productID uint) int {
	t.Helper()

	p, err := e.Repo.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

// requireCartConsistent checks the stored cart total against its items.
func (e *env) requireCartConsistent(t *testing.T, userID uint) {
	t.Helper()

	ctx := context.Background()
	cart, err := e.Repo.GetCartByUser(ctx, userID)
	require.NoError(t, err)
	items, err := e.Repo.CartItems(ctx, cart.ID)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.TotalPrice)
	}
	require.Truef(t, sum.Equal(cart.TotalPrice), "cart total %s, items sum %s", cart.TotalPrice, sum)
}

func (e *env) eventTypes(topic string) []string {
	var out []string
	for _, p := range e.Events.Events() {
		if p.Topic != topic {
			continue
		}
		switch ev := p.Event.(type) {
		case mykafka.CartEvent:
			out = append(out, ev.Type)
		case mykafka.OrderEvent:
			out = append(out, ev.Type)
		case mykafka.ProductEvent:
			out = append(out, ev.Type)
		case mykafka.UserEvent:
			out = append(out, ev.Type)
		}
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
