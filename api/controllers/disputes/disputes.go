package disputes

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/api/controllers/actor"
	"github.com/angelmondragon/marketplace-backend/api/responses"
	"github.com/angelmondragon/marketplace-backend/api/validators"
	internaldisputes "github.com/angelmondragon/marketplace-backend/internal/disputes"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

const (
	maxReasonLength      = 200
	maxDescriptionLength = 5000
	maxImageURLLength    = 2048
)

type openRequest struct {
	OrderID     uuid.UUID `json:"orderId" validate:"required"`
	Reason      string    `json:"reason" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Images      []string  `json:"images" validate:"omitempty,max=10,dive,url"`
}

type replyRequest struct {
	Reply string `json:"reply" validate:"required"`
}

type statusRequest struct {
	Status     string  `json:"status" validate:"required"`
	AdminNotes *string `json:"adminNotes"`
}

// Open files a dispute against one of the buyer's orders.
func Open(svc internaldisputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload openRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dispute, err := svc.Open(r.Context(), buyerID, internaldisputes.OpenInput{
			OrderID:     payload.OrderID,
			Reason:      validators.SanitizeString(payload.Reason, maxReasonLength),
			Description: validators.SanitizeString(payload.Description, maxDescriptionLength),
			Images:      validators.SanitizeStrings(payload.Images, maxImageURLLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dispute)
	}
}

// Reply appends the shop owner's response to the dispute thread.
func Reply(svc internaldisputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		disputeID, err := validators.ParseUUIDParam(r, "disputeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload replyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dispute, err := svc.VendorReply(r.Context(), vendorID, disputeID, validators.SanitizeString(payload.Reply, maxDescriptionLength))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dispute)
	}
}

// SetStatus lets an admin move a dispute and attach notes.
func SetStatus(svc internaldisputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		disputeID, err := validators.ParseUUIDParam(r, "disputeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.AdminNotes != nil {
			notes := validators.SanitizeString(*payload.AdminNotes, maxDescriptionLength)
			payload.AdminNotes = &notes
		}
		dispute, err := svc.AdminSetStatus(r.Context(), adminID, disputeID, payload.Status, payload.AdminNotes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dispute)
	}
}

func Mine(svc internaldisputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListBuyerDisputes(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Vendor(svc internaldisputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListVendorDisputes(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// All lists every dispute for admins, optionally filtered by ?status.
func All(svc internaldisputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := validators.SanitizeString(r.URL.Query().Get("status"), 32)
		list, err := svc.ListAllDisputes(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Detail(svc internaldisputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := actor.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		disputeID, err := validators.ParseUUIDParam(r, "disputeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dispute, err := svc.GetDispute(r.Context(), viewerID, actor.Role(r), disputeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dispute)
	}
}
