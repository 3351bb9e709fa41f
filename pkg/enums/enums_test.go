package enums

import "testing"

func TestParseOrderStatusNormalizesCase(t *testing.T) {
	got, err := ParseOrderStatus("  Shipped ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", got)
	}
	if _, err := ParseOrderStatus("lost"); err == nil {
		t.Fatalf("expected invalid status error")
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Fatalf("expected %v, got %v", tt.allowed, got)
			}
		})
	}
	if !OrderStatusDelivered.IsTerminal() || !OrderStatusCancelled.IsTerminal() || OrderStatusPending.IsTerminal() {
		t.Fatalf("unexpected terminal classification")
	}
}

func TestDisputeStatusRules(t *testing.T) {
	if got := DisputeStatusOpen.AfterVendorReply(); got != DisputeStatusVendorResponded {
		t.Fatalf("open should advance to vendor-responded, got %s", got)
	}
	if got := DisputeStatusUnderReview.AfterVendorReply(); got != DisputeStatusUnderReview {
		t.Fatalf("under-review should not regress, got %s", got)
	}
	if !DisputeStatusOpen.CanAdminSet(DisputeStatusResolved) {
		t.Fatalf("admin should resolve open disputes")
	}
	if DisputeStatusResolved.CanAdminSet(DisputeStatusOpen) {
		t.Fatalf("resolved disputes must stay closed")
	}
	if DisputeStatusOpen.CanAdminSet(DisputeStatusOpen) {
		t.Fatalf("same-status writes are not transitions")
	}
	if _, err := ParseDisputeStatus("vendor-responded"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistrationRole(t *testing.T) {
	cases := map[string]UserRole{
		"vendor": UserRoleVendor,
		"Seller": UserRoleVendor,
		"buyer":  UserRoleBuyer,
		"admin":  UserRoleBuyer,
		"":       UserRoleBuyer,
	}
	for in, want := range cases {
		if got := RegistrationRole(in); got != want {
			t.Fatalf("RegistrationRole(%q)=%s want %s", in, got, want)
		}
	}
}

func TestParseDisputeReasonAndContactStatus(t *testing.T) {
	if _, err := ParseDisputeReason("wrong_item"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseDisputeReason("changed_mind"); err == nil {
		t.Fatalf("expected invalid reason")
	}
	if got, err := ParseContactStatus("REPLIED"); err != nil || got != ContactStatusReplied {
		t.Fatalf("expected replied, got %s (%v)", got, err)
	}
	if len(ContactStatuses()) != 4 {
		t.Fatalf("expected four contact statuses")
	}
}
