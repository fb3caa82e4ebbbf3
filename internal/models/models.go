package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser   = "ROLE_USER"
	RoleAdmin  = "ROLE_ADMIN"
	RoleSeller = "ROLE_SELLER"
)

const OrderStatusPendingPayment = "Pending payment"

type Role struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:32;uniqueIndex;not null"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Roles        []Role `gorm:"many2many:user_roles"`
	CreatedAt    time.Time
}

func (u User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;uniqueIndex;not null"`
}

// Product.SpecialPrice is the price after discount and is what carts snapshot.
type Product struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	CategoryID   uint            `gorm:"index;not null"`
	SellerID     uint            `gorm:"index"`
	Name         string          `gorm:"size:255;not null"`
	Description  string          `gorm:"type:text"`
	Image        string          `gorm:"size:512"`
	Stock        int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount     decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	SpecialPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Cart struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	UserID     uint            `gorm:"uniqueIndex;not null"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

type CartItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	CartID      uint            `gorm:"uniqueIndex:idx_cart_product;not null"`
	ProductID   uint            `gorm:"uniqueIndex:idx_cart_product;not null"`
	SinglePrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount    decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Quantity    int             `gorm:"not null;check:chk_cart_items_quantity,quantity > 0"`
}

type Address struct {
	ID             uuid.UUID `gorm:"primaryKey"`
	UserID         uint      `gorm:"index;not null"`
	Street         string    `gorm:"size:255;not null"`
	City           string    `gorm:"size:255;not null"`
	Province       string    `gorm:"size:255;not null"`
	Country        string    `gorm:"size:255;not null"`
	PostalCode     string    `gorm:"size:32;not null"`
	PhoneNumber    string    `gorm:"size:32;not null"`
	DefaultAddress bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID         uuid.UUID       `gorm:"primaryKey"`
	UserID     uint            `gorm:"index;not null"`
	Email      string          `gorm:"size:255"`
	OrderDate  time.Time       `gorm:"not null"`
	PaymentID  uuid.UUID       `gorm:"index"`
	AddressID  uuid.UUID       `gorm:"index"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status     string          `gorm:"size:64;not null"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem.Price is the line total at order time.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	OrderID     uuid.UUID       `gorm:"index;not null"`
	ProductID   uint            `gorm:"index;not null"`
	ProductName string          `gorm:"size:255"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount    decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

type Payment struct {
	ID                      uuid.UUID `gorm:"primaryKey"`
	OrderID                 uuid.UUID `gorm:"uniqueIndex;not null"`
	PaymentMethod           string    `gorm:"size:64;not null"`
	ThirdPartyPaymentID     string    `gorm:"size:255"`
	ThirdPartyPaymentStatus string    `gorm:"size:64"`
	ThirdPartyPaymentURL    string    `gorm:"size:1024"`
	ThirdPartyResponse      string    `gorm:"type:text"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Role) TableName() string      { return "roles" }
func (User) TableName() string      { return "users" }
func (Category) TableName() string  { return "categories" }
func (Product) TableName() string   { return "products" }
func (Cart) TableName() string      { return "carts" }
func (CartItem) TableName() string  { return "cart_items" }
func (Address) TableName() string   { return "addresses" }
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }
func (Payment) TableName() string   { return "payments" }

func All() []any {
	return []any{
		&Role{}, &User{}, &Category{}, &Product{}, &Cart{}, &CartItem{},
		&Address{}, &Order{}, &OrderItem{}, &Payment{},
	}
}
