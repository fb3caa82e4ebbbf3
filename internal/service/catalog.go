package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
	// Search is optional; keyword search falls back to the database without it.
	Search search.Index
	TxOpts pkgdb.TxOptions
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*transport.CategoryView, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 3 {
		return nil, fmt.Errorf("%w: category name must be at least 3 characters long", ErrInvalidArgument)
	}

	if _, err := s.Repo.GetCategoryByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: Category with name=%s already exists.", ErrConflict, name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := models.Category{Name: name}
	if err := s.Repo.CreateCategory(ctx, &c); err != nil {
		return nil, orConflict(err, "Category with name=%s already exists.", name)
	}

	v := transport.ToCategoryView(c)
	return &v, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*transport.CategoryView, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Category not found with id: %d", id)
	}
	v := transport.ToCategoryView(*c)
	return &v, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, page util.Page) (*transport.CategoryListView, error) {
	total, items, err := s.Repo.ListCategories(ctx, page)
	if err != nil {
		return nil, err
	}

	out := &transport.CategoryListView{
		Categories: make([]transport.CategoryView, 0, len(items)),
		PageInfo:   transport.NewPageInfo(page, total),
	}
	for _, c := range items {
		out.Categories = append(out.Categories, transport.ToCategoryView(c))
	}
	return out, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req transport.CategoryRequest) (*transport.CategoryView, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 3 {
		return nil, fmt.Errorf("%w: category name must be at least 3 characters long", ErrInvalidArgument)
	}

	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Category not found with id: %d", id)
	}

	if other, err := s.Repo.GetCategoryByName(ctx, name); err == nil && other.ID != id {
		return nil, fmt.Errorf("%w: Category with name=%s already exists.", ErrConflict, name)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c.Name = name
	if err := s.Repo.SaveCategory(ctx, c); err != nil {
		return nil, orConflict(err, "Category with name=%s already exists.", name)
	}

	v := transport.ToCategoryView(*c)
	return &v, nil
}

// DeleteCategory refuses to orphan products.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) (*transport.CategoryView, error) {
	var deleted models.Category
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		c, err := tx.GetCategory(ctx, id)
		if err != nil {
			return orNotFound(err, "Category not found with id: %d", id)
		}

		n, err := tx.CountProductsInCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: Category %s still has %d products", ErrConflict, c.Name, n)
		}

		if err := tx.DeleteCategory(ctx, id); err != nil {
			return orNotFound(err, "Category not found with id: %d", id)
		}
		deleted = *c
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := transport.ToCategoryView(deleted)
	return &v, nil
}

func (s *CatalogService) AddProduct(ctx context.Context, categoryID uint, req transport.ProductRequest, sellerID uint) (*transport.ProductView, error) {
	if _, err := s.Repo.GetCategory(ctx, categoryID); err != nil {
		return nil, orNotFound(err, "Category not found with id: %d", categoryID)
	}

	p := models.Product{
		CategoryID:   categoryID,
		SellerID:     sellerID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Image:        req.Image,
		Stock:        req.StockQuantity,
		Price:        req.Price,
		Discount:     req.Discount,
		SpecialPrice: SpecialPrice(req.Price, req.Discount),
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}

	s.index(ctx, p)
	publish(ctx, s.Events, mykafka.TopicProduct, strconv.FormatUint(uint64(p.ID), 10), mykafka.ProductEvent{
		Type:      mykafka.EventProductCreated,
		ProductID: p.ID,
		Name:      p.Name,
		At:        time.Now().UTC(),
	})

	v := transport.ToProductView(p)
	return &v, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*transport.ProductView, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Product not found with id: %d", id)
	}
	v := transport.ToProductView(*p)
	return &v, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page util.Page) (*transport.ProductListView, error) {
	return s.listProducts(ctx, repo.ProductFilter{}, page)
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID uint, page util.Page) (*transport.ProductListView, error) {
	if _, err := s.Repo.GetCategory(ctx, categoryID); err != nil {
		return nil, orNotFound(err, "Category not found with id: %d", categoryID)
	}
	return s.listProducts(ctx, repo.ProductFilter{CategoryID: categoryID}, page)
}

// SearchProducts asks the search index first and uses a case-insensitive
// name match when no index is configured or the index fails.
func (s *CatalogService) SearchProducts(ctx context.Context, keyword string, page util.Page) (*transport.ProductListView, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrInvalidArgument)
	}

	if s.Search != nil {
		out, err := s.searchIndex(ctx, keyword, page)
		if err == nil {
			return out, nil
		}
		logging.FromContext(ctx).With("svc", "catalog").Warn("search_index_failed", "keyword", keyword, "error", err)
	}

	return s.listProducts(ctx, repo.ProductFilter{Keyword: keyword}, page)
}

func (s *CatalogService) searchIndex(ctx context.Context, keyword string, page util.Page) (*transport.ProductListView, error) {
	total, ids, err := s.Search.Search(ctx, keyword, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}

	byID, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := &transport.ProductListView{
		Products: make([]transport.ProductView, 0, len(ids)),
		PageInfo: transport.NewPageInfo(page, total),
	}
	// relevance order; ids deleted since indexing are skipped
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out.Products = append(out.Products, transport.ToProductView(p))
		}
	}
	return out, nil
}

func (s *CatalogService) listProducts(ctx context.Context, f repo.ProductFilter, page util.Page) (*transport.ProductListView, error) {
	total, items, err := s.Repo.ListProducts(ctx, f, page)
	if err != nil {
		return nil, err
	}

	out := &transport.ProductListView{
		Products: make([]transport.ProductView, 0, len(items)),
		PageInfo: transport.NewPageInfo(page, total),
	}
	for _, p := range items {
		out.Products = append(out.Products, transport.ToProductView(p))
	}
	return out, nil
}

// UpdateProduct rewrites every editable field. Cart lines keep the unit price
// they were added with.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.ProductRequest) (*transport.ProductView, error) {
	var saved models.Product
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		p, err := tx.LockProduct(ctx, id)
		if err != nil {
			return orNotFound(err, "Product not found with id: %d", id)
		}

		p.Name = strings.TrimSpace(req.Name)
		p.Description = req.Description
		p.Image = req.Image
		p.Stock = req.StockQuantity
		p.Price = req.Price
		p.Discount = req.Discount
		p.SpecialPrice = SpecialPrice(req.Price, req.Discount)

		if err := tx.SaveProduct(ctx, p); err != nil {
			return err
		}
		saved = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.index(ctx, saved)
	publish(ctx, s.Events, mykafka.TopicProduct, strconv.FormatUint(uint64(saved.ID), 10), mykafka.ProductEvent{
		Type:      mykafka.EventProductUpdated,
		ProductID: saved.ID,
		Name:      saved.Name,
		At:        time.Now().UTC(),
	})

	v := transport.ToProductView(saved)
	return &v, nil
}

func (s *CatalogService) UpdateProductImage(ctx context.Context, id uint, image string) (*transport.ProductView, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidArgument)
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Product not found with id: %d", id)
	}

	p.Image = image
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}

	v := transport.ToProductView(*p)
	return &v, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) (*transport.ProductView, error) {
	var deleted models.Product
	err := s.Repo.Tx(ctx, s.TxOpts, func(tx *repo.GormRepo) error {
		p, err := deleteProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		deleted = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.unindex(ctx, id)
	publish(ctx, s.Events, mykafka.TopicProduct, strconv.FormatUint(uint64(id), 10), mykafka.ProductEvent{
		Type:      mykafka.EventProductDeleted,
		ProductID: id,
		Name:      deleted.Name,
		At:        time.Now().UTC(),
	})

	v := transport.ToProductView(deleted)
	return &v, nil
}

// deleteProduct drops the product and every cart line pointing at it, then
// recomputes the affected cart totals. It must run inside a transaction.
func deleteProduct(ctx context.Context, tx *repo.GormRepo, id uint) (*models.Product, error) {
	p, err := tx.LockProduct(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Product not found with id: %d", id)
	}

	items, err := tx.CartItemsByProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	carts := make(map[uint]struct{}, len(items))
	for _, it := range items {
		if err := tx.DeleteCartItem(ctx, it.ID); err != nil {
			return nil, err
		}
		carts[it.CartID] = struct{}{}
	}

	if err := tx.DeleteProduct(ctx, id); err != nil {
		return nil, orNotFound(err, "Product not found with id: %d", id)
	}

	for cartID := range carts {
		if _, _, err := tx.RecomputeCartTotal(ctx, cartID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *CatalogService) index(ctx context.Context, p models.Product) {
	if s.Search == nil {
		return
	}
	doc := search.Document{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.SpecialPrice,
	}
	if err := s.Search.Index(ctx, doc); err != nil {
		logging.FromContext(ctx).With("svc", "catalog").Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) unindex(ctx context.Context, id uint) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).With("svc", "catalog").Warn("search_delete_failed", "product_id", id, "error", err)
	}
}
