package enums

import (
	"fmt"
	"strings"
)

// DisputeStatus tracks a dispute from opening to resolution.
type DisputeStatus string

const (
	DisputeStatusOpen            DisputeStatus = "open"
	DisputeStatusVendorResponded DisputeStatus = "vendor-responded"
	DisputeStatusUnderReview     DisputeStatus = "under-review"
	DisputeStatusResolved        DisputeStatus = "resolved"
	DisputeStatusRejected        DisputeStatus = "rejected"
)

var validDisputeStatuses = []DisputeStatus{
	DisputeStatusOpen,
	DisputeStatusVendorResponded,
	DisputeStatusUnderReview,
	DisputeStatusResolved,
	DisputeStatusRejected,
}

func (s DisputeStatus) String() string {
	return string(s)
}

func (s DisputeStatus) IsValid() bool {
	for _, candidate := range validDisputeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the dispute is closed.
func (s DisputeStatus) IsTerminal() bool {
	return s == DisputeStatusResolved || s == DisputeStatusRejected
}

// AfterVendorReply returns the status a vendor reply moves the dispute to.
// Only an open dispute advances; later review states are kept as they are.
func (s DisputeStatus) AfterVendorReply() DisputeStatus {
	if s == DisputeStatusOpen {
		return DisputeStatusVendorResponded
	}
	return s
}

// CanAdminSet reports whether an admin may move the dispute to next.
// Closed disputes stay closed and the status must actually change.
func (s DisputeStatus) CanAdminSet(next DisputeStatus) bool {
	return next.IsValid() && !s.IsTerminal() && s != next
}

// ParseDisputeStatus converts raw input into a DisputeStatus.
func ParseDisputeStatus(value string) (DisputeStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validDisputeStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute status %q", value)
}

// DisputeReason is the buyer-selected category of a dispute.
type DisputeReason string

const (
	DisputeReasonNotReceived    DisputeReason = "not_received"
	DisputeReasonDamagedProduct DisputeReason = "damaged_product"
	DisputeReasonWrongItem      DisputeReason = "wrong_item"
	DisputeReasonRefundRequest  DisputeReason = "refund_request"
	DisputeReasonOther          DisputeReason = "other"
)

var validDisputeReasons = []DisputeReason{
	DisputeReasonNotReceived,
	DisputeReasonDamagedProduct,
	DisputeReasonWrongItem,
	DisputeReasonRefundRequest,
	DisputeReasonOther,
}

func (r DisputeReason) String() string {
	return string(r)
}

func (r DisputeReason) IsValid() bool {
	for _, candidate := range validDisputeReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseDisputeReason converts raw input into a DisputeReason.
func ParseDisputeReason(value string) (DisputeReason, error) {
	for _, candidate := range validDisputeReasons {
		if string(candidate) == strings.TrimSpace(value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute reason %q", value)
}
