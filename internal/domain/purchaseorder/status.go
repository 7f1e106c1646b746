package purchaseorder

import "strings"

// Status represents the lifecycle state of a purchase order
type Status string

const (
	StatusOpen      Status = "Open"
	StatusClosed    Status = "Closed"
	StatusCancelled Status = "Cancelled"
	StatusExpired   Status = "Expired"
	StatusDuplicate Status = "Duplicate"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusCancelled, StatusExpired, StatusDuplicate:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled || s == StatusDuplicate
}

// CanTransitionTo checks if a transition to target is allowed
func (s Status) CanTransitionTo(target Status) bool {
	if !target.IsValid() || s == target {
		return false
	}
	switch s {
	case StatusOpen:
		return true
	case StatusExpired:
		return target == StatusClosed || target == StatusCancelled
	default:
		return false
	}
}

var statusVocabulary = map[string]Status{
	"open":               StatusOpen,
	"pending":            StatusOpen,
	"new":                StatusOpen,
	"created":            StatusOpen,
	"issued":             StatusOpen,
	"approved":           StatusOpen,
	"confirmed":          StatusOpen,
	"active":             StatusOpen,
	"in progress":        StatusOpen,
	"po raised":          StatusOpen,
	"partially received": StatusOpen,
	"closed":             StatusClosed,
	"complete":           StatusClosed,
	"completed":          StatusClosed,
	"fulfilled":          StatusClosed,
	"received":           StatusClosed,
	"delivered":          StatusClosed,
	"grn done":           StatusClosed,
	"cancelled":          StatusCancelled,
	"canceled":           StatusCancelled,
	"rejected":           StatusCancelled,
	"void":               StatusCancelled,
	"expired":            StatusExpired,
	"lapsed":             StatusExpired,
	"duplicate":          StatusDuplicate,
}

// NormalizeStatus maps a vendor's status vocabulary onto Status.
// Unknown or empty values are treated as Open.
func NormalizeStatus(raw string) Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.Join(strings.FieldsFunc(key, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), " ")
	if s, ok := statusVocabulary[key]; ok {
		return s
	}
	return StatusOpen
}
