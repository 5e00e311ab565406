package orders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateadmin/plateadmin/internal/models"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		action  string
		reason  string
		want    string
		wantErr error
	}{
		{name: "accept pending", from: models.OrderPending, action: ActionAccept, want: models.OrderAccepted},
		{name: "reject pending", from: models.OrderPending, action: ActionReject, reason: "Item out of stock", want: models.OrderRejected},
		{name: "reject needs reason", from: models.OrderPending, action: ActionReject, reason: "  ", wantErr: ErrReasonRequired},
		{name: "ship accepted", from: models.OrderAccepted, action: ActionShip, want: models.OrderShipped},
		{name: "deliver shipped", from: models.OrderShipped, action: ActionDeliver, want: models.OrderDelivered},
		{name: "ship pending", from: models.OrderPending, action: ActionShip, wantErr: ErrInvalidTransition},
		{name: "accept accepted", from: models.OrderAccepted, action: ActionAccept, wantErr: ErrInvalidTransition},
		{name: "reject delivered", from: models.OrderDelivered, action: ActionReject, reason: "late", wantErr: ErrInvalidTransition},
		{name: "anything on rejected", from: models.OrderRejected, action: ActionAccept, wantErr: ErrInvalidTransition},
		{name: "unknown action", from: models.OrderPending, action: "cancel", wantErr: ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &models.Order{Status: tt.from}
			err := Apply(order, tt.action, tt.reason)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Equal(t, tt.from, order.Status, "status must not change on error")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, order.Status)
		})
	}
}

func TestApply_RecordsRejectionReason(t *testing.T) {
	order := &models.Order{Status: models.OrderPending}
	require.NoError(t, Apply(order, ActionReject, "  Item out of stock "))
	assert.Equal(t, "Item out of stock", order.RejectionReason)
}

func TestSummarize(t *testing.T) {
	stats := Summarize([]models.Order{
		{Status: models.OrderPending, TotalAmount: 2499},
		{Status: models.OrderAccepted, TotalAmount: 3198},
		{Status: models.OrderShipped, TotalAmount: 899},
		{Status: models.OrderDelivered, TotalAmount: 8697},
		{Status: models.OrderRejected, TotalAmount: 3499},
	})

	assert.Equal(t, Stats{
		Total: 5, Pending: 1, Accepted: 1, Shipped: 1, Delivered: 1, Rejected: 1,
		Revenue: 2499 + 3198 + 899 + 8697,
	}, stats)
}

func TestAvailable(t *testing.T) {
	assert.Equal(t, []string{ActionAccept, ActionReject}, Available(models.OrderPending))
	assert.Equal(t, []string{ActionShip}, Available(models.OrderAccepted))
	assert.Equal(t, []string{ActionDeliver}, Available(models.OrderShipped))
	assert.Empty(t, Available(models.OrderDelivered))
	assert.Empty(t, Available(models.OrderRejected))
}
