package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=3"`
}

type ProductRequest struct {
	Name          string          `json:"name" validate:"required,min=3"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
	StockQuantity int             `json:"stockQuantity" validate:"min=0"`
	Price         decimal.Decimal `json:"price" validate:"min=0"`
	Discount      decimal.Decimal `json:"discount" validate:"min=0,max=99"`
}

type ProductImageRequest struct {
	Image string `json:"image" validate:"required"`
}

type AddressRequest struct {
	Street         string `json:"street" validate:"min=3"`
	City           string `json:"city" validate:"min=3"`
	Province       string `json:"province" validate:"min=3"`
	Country        string `json:"country" validate:"min=3"`
	PostalCode     string `json:"postalCode" validate:"min=3"`
	PhoneNumber    string `json:"phoneNumber" validate:"min=9"`
	DefaultAddress bool   `json:"defaultAddress"`
}

type OrderRequest struct {
	AddressID     uuid.UUID `json:"addressId" validate:"required"`
	PaymentMethod string    `json:"paymentMethod" validate:"required"`
}

type SignupRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=64"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Roles    []string `json:"roles"`
}

type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CategoryView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProductView struct {
	ID            uint            `json:"id"`
	CategoryID    uint            `json:"categoryId"`
	SellerID      uint            `json:"sellerId,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
	StockQuantity int             `json:"stockQuantity"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
	SpecialPrice  decimal.Decimal `json:"specialPrice"`
}

type CartItemView struct {
	ID          uint            `json:"id"`
	CartID      uint            `json:"cartId"`
	Product     *ProductView    `json:"product,omitempty"`
	SinglePrice decimal.Decimal `json:"singlePrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Discount    decimal.Decimal `json:"discount"`
	Quantity    int             `json:"quantity"`
}

type CartContentView struct {
	ID         uint            `json:"id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CartItems  []CartItemView  `json:"cartItems"`
}

type CartTotalsView struct {
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	TotalQuantity int             `json:"totalQuantity"`
}

type AddressView struct {
	ID             uuid.UUID `json:"id"`
	Street         string    `json:"street"`
	City           string    `json:"city"`
	Province       string    `json:"province"`
	Country        string    `json:"country"`
	PostalCode     string    `json:"postalCode"`
	PhoneNumber    string    `json:"phoneNumber"`
	DefaultAddress bool      `json:"defaultAddress"`
}

type AddressListView struct {
	Addresses      []AddressView `json:"addresses"`
	UserID         uint          `json:"userId"`
	TotalAddresses int           `json:"totalAddresses"`
}

type OrderItemView struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	Price       decimal.Decimal `json:"price"`
}

type PaymentView struct {
	ID                        uuid.UUID `json:"id"`
	PaymentMethod             string    `json:"paymentMethod"`
	ThirdPartyPaymentID       string    `json:"thirdPartyPaymentId"`
	ThirdPartyPaymentStatus   string    `json:"thirdPartyPaymentStatus"`
	ThirdPartyPaymentURL      string    `json:"thirdPartyPaymentUrl"`
	ThirdPartyPaymentResponse string    `json:"thirdPartyPaymentResponse"`
}

type OrderView struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uint            `json:"userId"`
	Email           string          `json:"email"`
	OrderItems      []OrderItemView `json:"orderItems"`
	OrderDate       time.Time       `json:"orderDate"`
	Payment         *PaymentView    `json:"payment,omitempty"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          string          `json:"status"`
	ShippingAddress *AddressView    `json:"shippingAddress,omitempty"`
}

type UserView struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// PageInfo is embedded in every list response.
type PageInfo struct {
	Page          int   `json:"page"`
	PageSize      int   `json:"pageSize"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	LastPage      bool  `json:"lastPage"`
}

type CategoryListView struct {
	Categories []CategoryView `json:"categories"`
	PageInfo
}

type ProductListView struct {
	Products []ProductView `json:"products"`
	PageInfo
}

type OrderListView struct {
	Orders []OrderView `json:"orders"`
	PageInfo
}

type UserListView struct {
	Users []UserView `json:"users"`
	PageInfo
}

type AuthMessageResponse struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type FieldErrorResponse struct {
	Status int                 `json:"status"`
	Errors map[string][]string `json:"errors"`
}

func ToCategoryView(c models.Category) CategoryView {
	return CategoryView{ID: c.ID, Name: c.Name}
}

func ToProductView(p models.Product) ProductView {
	return ProductView{
		ID:            p.ID,
		CategoryID:    p.CategoryID,
		SellerID:      p.SellerID,
		Name:          p.Name,
		Description:   p.Description,
		Image:         p.Image,
		StockQuantity: p.Stock,
		Price:         p.Price,
		Discount:      p.Discount,
		SpecialPrice:  p.SpecialPrice,
	}
}

// ToCartItemView embeds the product when it is still in the catalog.
func ToCartItemView(item models.CartItem, product *models.Product) CartItemView {
	v := CartItemView{
		ID:          item.ID,
		CartID:      item.CartID,
		SinglePrice: item.SinglePrice,
		TotalPrice:  item.TotalPrice,
		Discount:    item.Discount,
		Quantity:    item.Quantity,
	}
	if product != nil {
		pv := ToProductView(*product)
		v.Product = &pv
	}
	return v
}

func ToAddressView(a models.Address) AddressView {
	return AddressView{
		ID:             a.ID,
		Street:         a.Street,
		City:           a.City,
		Province:       a.Province,
		Country:        a.Country,
		PostalCode:     a.PostalCode,
		PhoneNumber:    a.PhoneNumber,
		DefaultAddress: a.DefaultAddress,
	}
}

func ToOrderItemView(it models.OrderItem) OrderItemView {
	return OrderItemView{
		ID:          it.ID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		Discount:    it.Discount,
		Price:       it.Price,
	}
}

func ToPaymentView(p models.Payment) PaymentView {
	return PaymentView{
		ID:                        p.ID,
		PaymentMethod:             p.PaymentMethod,
		ThirdPartyPaymentID:       p.ThirdPartyPaymentID,
		ThirdPartyPaymentStatus:   p.ThirdPartyPaymentStatus,
		ThirdPartyPaymentURL:      p.ThirdPartyPaymentURL,
		ThirdPartyPaymentResponse: p.ThirdPartyResponse,
	}
}

func ToOrderView(o models.Order, items []models.OrderItem, payment *models.Payment, address *models.Address) OrderView {
	v := OrderView{
		ID:         o.ID,
		UserID:     o.UserID,
		Email:      o.Email,
		OrderItems: make([]OrderItemView, 0, len(items)),
		OrderDate:  o.OrderDate,
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
	}
	for _, it := range items {
		v.OrderItems = append(v.OrderItems, ToOrderItemView(it))
	}
	if payment != nil {
		pv := ToPaymentView(*payment)
		v.Payment = &pv
	}
	if address != nil {
		av := ToAddressView(*address)
		v.ShippingAddress = &av
	}
	return v
}

func ToUserView(u models.User) UserView {
	return UserView{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.RoleNames(),
	}
}

func NewPageInfo(p util.Page, total int64) PageInfo {
	return PageInfo{
		Page:          p.Number,
		PageSize:      p.Size,
		TotalPages:    p.TotalPages(total),
		TotalElements: total,
		LastPage:      p.IsLast(total),
	}
}
