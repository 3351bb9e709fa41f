package admin

import (
	"net/http"

	"github.com/angelmondragon/marketplace-backend/api/responses"
	internaladmin "github.com/angelmondragon/marketplace-backend/internal/admin"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

// Dashboard returns platform-wide counts and revenue totals.
func Dashboard(svc internaladmin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

func Commissions(svc internaladmin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Commissions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// VendorEarnings reports per-shop revenue, earnings and commission.
func VendorEarnings(svc internaladmin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		earnings, err := svc.VendorEarnings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, earnings)
	}
}
