package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a Shopcart.
type Status string

const (
	StatusActive    Status = "active"
	StatusAbandoned Status = "abandoned"
	StatusLocked    Status = "locked"
	StatusExpired   Status = "expired"
)

// Statuses lists the canonical status values.
func Statuses() []Status {
	return []Status{StatusActive, StatusAbandoned, StatusLocked, StatusExpired}
}

// ParseStatus validates a canonical status value, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, nil
	case StatusAbandoned:
		return StatusAbandoned, nil
	case StatusLocked:
		return StatusLocked, nil
	case StatusExpired:
		return StatusExpired, nil
	}
	return "", NewValidationError("status", "Invalid status '%s'. Allowed values: %s.", s, "abandoned, active, expired, locked")
}

// Transition sets the cart status to target and refreshes LastModified.
// A transition to the current status is a no-op that leaves the timestamp
// untouched; the returned bool reports whether anything changed.
func (c *Shopcart) Transition(target Status, now time.Time) bool {
	if c.Status == target {
		return false
	}
	c.Status = target
	c.LastModified = now
	return true
}

// GuardItemMutation rejects item mutation on an abandoned cart. Only
// abandoned carts block item changes; locked and expired carts stay mutable
// at the aggregate level.
func (c *Shopcart) GuardItemMutation() error {
	if Status(strings.ToLower(strings.TrimSpace(string(c.Status)))) == StatusAbandoned {
		return fmt.Errorf("%w: cannot update items on an abandoned shopcart", ErrConflict)
	}
	return nil
}
