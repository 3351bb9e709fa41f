package shops

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/marketplace-backend/api/controllers/actor"
	"github.com/angelmondragon/marketplace-backend/api/responses"
	"github.com/angelmondragon/marketplace-backend/api/validators"
	"github.com/angelmondragon/marketplace-backend/internal/shops"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

type shopRequest struct {
	ShopName     string   `json:"shopName" validate:"required,min=3"`
	Description  string   `json:"description" validate:"max=500"`
	Category     string   `json:"category"`
	Categories   []string `json:"categories" validate:"max=20"`
	Country      string   `json:"country"`
	LogoURL      string   `json:"logoUrl" validate:"omitempty,url"`
	BannerURL    string   `json:"bannerUrl" validate:"omitempty,url"`
	Address      string   `json:"address"`
	ContactEmail string   `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone string   `json:"contactPhone"`
}

type updateShopRequest struct {
	ShopName     *string   `json:"shopName" validate:"omitempty,min=3"`
	Description  *string   `json:"description" validate:"omitempty,max=500"`
	Category     *string   `json:"category"`
	Categories   *[]string `json:"categories" validate:"omitempty,max=20"`
	Country      *string   `json:"country"`
	LogoURL      *string   `json:"logoUrl" validate:"omitempty,url"`
	BannerURL    *string   `json:"bannerUrl" validate:"omitempty,url"`
	Address      *string   `json:"address"`
	ContactEmail *string   `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone *string   `json:"contactPhone"`
}

func (req *shopRequest) Normalize() {
	req.ShopName = strings.TrimSpace(req.ShopName)
	req.Description = strings.TrimSpace(req.Description)
	req.LogoURL = strings.TrimSpace(req.LogoURL)
	req.BannerURL = strings.TrimSpace(req.BannerURL)
	req.ContactEmail = validators.NormalizeEmail(req.ContactEmail)
}

func (req *updateShopRequest) Normalize() {
	for _, field := range []*string{req.ShopName, req.Description, req.LogoURL, req.BannerURL} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
	if req.ContactEmail != nil {
		email := validators.NormalizeEmail(*req.ContactEmail)
		req.ContactEmail = &email
	}
}

func (req shopRequest) toInput() shops.ShopInput {
	return shops.ShopInput{
		ShopName:     req.ShopName,
		Description:  req.Description,
		Category:     req.Category,
		Categories:   validators.SanitizeStrings(req.Categories, 64),
		Country:      req.Country,
		LogoURL:      req.LogoURL,
		BannerURL:    req.BannerURL,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}
}

func (req updateShopRequest) toInput() shops.UpdateShopInput {
	in := shops.UpdateShopInput{
		ShopName:     req.ShopName,
		Description:  req.Description,
		Category:     req.Category,
		Country:      req.Country,
		LogoURL:      req.LogoURL,
		BannerURL:    req.BannerURL,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}
	if req.Categories != nil {
		cleaned := validators.SanitizeStrings(*req.Categories, 64)
		in.Categories = &cleaned
	}
	return in
}

// Create upserts a shop for the calling vendor keyed on its name.
func Create(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body shopRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shop, err := svc.CreateShop(r.Context(), ownerID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shop)
	}
}

func Mine(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.MyShops(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Profile returns the caller's most recently created shop.
func Profile(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shop, err := svc.MyLatestShop(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}

// Update edits the shop named by ?shopId, or the latest shop when absent.
func Update(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shopID, err := actor.OptionalUUIDQuery(r, "shopId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateShopRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shop, err := svc.UpdateShop(r.Context(), ownerID, shopID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}

func ListPublic(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := validators.SanitizeString(r.URL.Query().Get("category"), 64)
		list, err := svc.ListPublicShops(r.Context(), category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetPublic(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := validators.ParseUUIDParam(r, "shopId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shop, err := svc.GetPublicShop(r.Context(), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}
