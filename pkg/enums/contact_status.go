package enums

import (
	"fmt"
	"strings"
)

// ContactStatus is the moderation state of a contact form submission.
type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusReplied  ContactStatus = "replied"
	ContactStatusArchived ContactStatus = "archived"
)

var validContactStatuses = []ContactStatus{
	ContactStatusNew,
	ContactStatusRead,
	ContactStatusReplied,
	ContactStatusArchived,
}

// ContactStatuses lists every status in display order.
func ContactStatuses() []ContactStatus {
	out := make([]ContactStatus, len(validContactStatuses))
	copy(out, validContactStatuses)
	return out
}

func (s ContactStatus) String() string {
	return string(s)
}

func (s ContactStatus) IsValid() bool {
	for _, candidate := range validContactStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseContactStatus converts raw input into a ContactStatus.
func ParseContactStatus(value string) (ContactStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validContactStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contact status %q", value)
}
