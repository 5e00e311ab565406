package orders

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/plateadmin/plateadmin/internal/models"
)

// Actions that move an order between states
const (
	ActionAccept  = "accept"
	ActionReject  = "reject"
	ActionShip    = "ship"
	ActionDeliver = "deliver"
)

var (
	ErrInvalidTransition = errors.New("invalid order transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrUnknownAction     = errors.New("unknown order action")
)

var transitions = map[string]map[string]string{
	models.OrderPending: {
		ActionAccept: models.OrderAccepted,
		ActionReject: models.OrderRejected,
	},
	models.OrderAccepted: {
		ActionShip: models.OrderShipped,
	},
	models.OrderShipped: {
		ActionDeliver: models.OrderDelivered,
	},
}

// Apply moves order to the state reached by action. The order is left
// untouched on error.
func Apply(order *models.Order, action, reason string) error {
	switch action {
	case ActionAccept, ActionReject, ActionShip, ActionDeliver:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	next, ok := transitions[order.Status][action]
	if !ok {
		return fmt.Errorf("%w: cannot %s an order that is %s", ErrInvalidTransition, action, order.Status)
	}

	reason = strings.TrimSpace(reason)
	if action == ActionReject && reason == "" {
		return ErrReasonRequired
	}

	order.Status = next
	if action == ActionReject {
		order.RejectionReason = reason
	}

	return nil
}

// Available lists the actions allowed from status, in a stable order
func Available(status string) []string {
	actions := make([]string, 0, len(transitions[status]))
	for action := range transitions[status] {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// Stats counts orders per status
type Stats struct {
	Total     int   `json:"total_orders"`
	Pending   int   `json:"pending_orders"`
	Accepted  int   `json:"accepted_orders"`
	Shipped   int   `json:"shipped_orders"`
	Delivered int   `json:"delivered_orders"`
	Rejected  int   `json:"rejected_orders"`
	Revenue   int64 `json:"revenue"` // excludes rejected orders
}

// Summarize computes order statistics
func Summarize(list []models.Order) Stats {
	stats := Stats{Total: len(list)}
	for _, o := range list {
		switch o.Status {
		case models.OrderPending:
			stats.Pending++
		case models.OrderAccepted:
			stats.Accepted++
		case models.OrderShipped:
			stats.Shipped++
		case models.OrderDelivered:
			stats.Delivered++
		case models.OrderRejected:
			stats.Rejected++
		}
		if o.Status != models.OrderRejected {
			stats.Revenue += o.TotalAmount
		}
	}
	return stats
}

// SearchFields are the order fields matched by the orders page search
func SearchFields(o models.Order) []string {
	return []string{o.Number, o.CustomerName, o.Status}
}
