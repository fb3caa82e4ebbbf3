// Package seed loads a YAML fixture of users, categories and products.
// Entries that already exist are skipped, so a fixture can be applied on
// every start.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Fixture struct {
	Users      []User     `yaml:"users"`
	Categories []Category `yaml:"categories"`
}

type User struct {
	Username string   `yaml:"username"`
	Email    string   `yaml:"email"`
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
}

type Category struct {
	Name     string    `yaml:"name"`
	Products []Product `yaml:"products"`
}

type Product struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Image       string          `yaml:"image"`
	Stock       int             `yaml:"stock"`
	Price       decimal.Decimal `yaml:"price"`
	Discount    decimal.Decimal `yaml:"discount"`
}

// Result counts what Apply created.
type Result struct {
	Users      int
	Categories int
	Products   int
}

func Decode(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

func LoadFile(path string) (*Fixture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh)
}

type Seeder struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
}

func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Result, error) {
	l := logging.FromContext(ctx).With("svc", "seed")
	var res Result

	for _, u := range f.Users {
		_, err := s.Auth.Signup(ctx, transport.SignupRequest{
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
			Roles:    u.Roles,
		})
		if errors.Is(err, service.ErrConflict) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		res.Users++
	}

	for _, c := range f.Categories {
		catID, created, err := s.category(ctx, c.Name)
		if err != nil {
			return res, err
		}
		if created {
			res.Categories++
		}

		for _, p := range c.Products {
			exists, err := s.Catalog.Repo.ProductNameExists(ctx, catID, p.Name)
			if err != nil {
				return res, err
			}
			if exists {
				continue
			}
			_, err = s.Catalog.AddProduct(ctx, catID, transport.ProductRequest{
				Name:          p.Name,
				Description:   p.Description,
				Image:         p.Image,
				StockQuantity: p.Stock,
				Price:         p.Price,
				Discount:      p.Discount,
			}, 0)
			if err != nil {
				return res, fmt.Errorf("seed product %s: %w", p.Name, err)
			}
			res.Products++
		}
	}

	l.Info("fixture applied", "users", res.Users, "categories", res.Categories, "products", res.Products)
	return res, nil
}

func (s *Seeder) category(ctx context.Context, name string) (uint, bool, error) {
	if c, err := s.Catalog.Repo.GetCategoryByName(ctx, name); err == nil {
		return c.ID, false, nil
	}

	c, err := s.Catalog.CreateCategory(ctx, transport.CategoryRequest{Name: name})
	if err != nil {
		return 0, false, fmt.Errorf("seed category %s: %w", name, err)
	}
	return c.ID, true, nil
}
