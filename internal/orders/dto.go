package orders

import (
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one requested product and quantity.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput is a checkout request. Items are processed in order.
type PlaceOrderInput struct {
	Items           []ItemInput
	ShippingAddress string
}

// LineItemDTO is a product snapshot taken at order time.
type LineItemDTO struct {
	ProductID uuid.UUID       `json:"productId"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderDTO is the API shape of an order.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	BuyerID         uuid.UUID         `json:"buyerId"`
	ShopID          uuid.UUID         `json:"shopId"`
	ShippingAddress string            `json:"shippingAddress"`
	Items           []LineItemDTO     `json:"items"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	VendorEarning   decimal.Decimal   `json:"vendorEarning"`
	AdminCommission decimal.Decimal   `json:"adminCommission"`
	Status          enums.OrderStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// CommissionDTO is the platform's record of one order's split.
type CommissionDTO struct {
	ID               uuid.UUID       `json:"id"`
	OrderID          uuid.UUID       `json:"orderId"`
	ShopID           uuid.UUID       `json:"shopId"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	VendorEarning    decimal.Decimal `json:"vendorEarning"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	Rate             decimal.Decimal `json:"rate"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func FromModel(o *models.Order) OrderDTO {
	items := make([]LineItemDTO, 0, len(o.Items))
	for _, li := range o.Items {
		items = append(items, LineItemDTO{
			ProductID: li.ProductID,
			Title:     li.Title,
			Quantity:  li.Quantity,
			Price:     li.UnitPrice,
		})
	}
	return OrderDTO{
		ID:              o.ID,
		BuyerID:         o.BuyerID,
		ShopID:          o.ShopID,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		TotalAmount:     o.TotalAmount,
		VendorEarning:   o.VendorEarning,
		AdminCommission: o.AdminCommission,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func FromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

func CommissionFromModel(c *models.Commission) CommissionDTO {
	return CommissionDTO{
		ID:               c.ID,
		OrderID:          c.OrderID,
		ShopID:           c.ShopID,
		TotalAmount:      c.TotalAmount,
		VendorEarning:    c.VendorEarning,
		CommissionAmount: c.CommissionAmount,
		Rate:             c.Rate,
		CreatedAt:        c.CreatedAt,
	}
}

// Split divides total into the platform commission and the vendor's share.
// The commission is rounded to cents and the vendor receives the remainder,
// so the two always sum to total.
func Split(total, rate decimal.Decimal) (vendorEarning, commission decimal.Decimal) {
	commission = total.Mul(rate).Round(2)
	return total.Sub(commission), commission
}
