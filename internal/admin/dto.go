package admin

import (
	"github.com/angelmondragon/marketplace-backend/internal/orders"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dashboard is the platform-wide rollup shown on the admin home page.
type Dashboard struct {
	TotalUsers      int64           `json:"totalUsers"`
	TotalVendors    int64           `json:"totalVendors"`
	TotalShops      int64           `json:"totalShops"`
	TotalProducts   int64           `json:"totalProducts"`
	TotalOrders     int64           `json:"totalOrders"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

// CommissionReport lists every commission record with running totals.
type CommissionReport struct {
	Commissions     []orders.CommissionDTO `json:"commissions"`
	TotalCommission decimal.Decimal        `json:"totalCommission"`
	TotalOrders     int                    `json:"totalOrders"`
}

// VendorEarning summarises one shop's sales.
type VendorEarning struct {
	ShopID          uuid.UUID       `json:"shopId"`
	VendorID        uuid.UUID       `json:"vendorId"`
	ShopName        string          `json:"shopName"`
	Username        string          `json:"username"`
	Email           string          `json:"email"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	AdminCommission decimal.Decimal `json:"adminCommission"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	TotalOrders     int64           `json:"totalOrders"`
}
