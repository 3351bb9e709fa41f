package auth

import (
	"github.com/angelmondragon/marketplace-backend/internal/shops"
	"github.com/angelmondragon/marketplace-backend/internal/users"
)

// RegisterRequest is the self-service signup payload. Role accepts
// buyer, vendor or seller; anything else registers a buyer.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty"`
	ShopName string `json:"shopName,omitempty"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by register and login.
type Session struct {
	Token  string         `json:"token"`
	User   *users.UserDTO `json:"user"`
	Vendor *shops.ShopDTO `json:"vendor,omitempty"`
}

// Profile is the current user plus, for vendors, their latest shop.
type Profile struct {
	User   *users.UserDTO `json:"user"`
	Vendor *shops.ShopDTO `json:"vendor,omitempty"`
}
