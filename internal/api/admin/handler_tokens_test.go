package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v75"
)

func TestIsLiveSubscription(t *testing.T) {
	cases := []struct {
		status stripe.SubscriptionStatus
		want   bool
	}{
		{stripe.SubscriptionStatusActive, true},
		{stripe.SubscriptionStatusTrialing, true},
		{stripe.SubscriptionStatusPastDue, false},
		{stripe.SubscriptionStatusCanceled, false},
		{stripe.SubscriptionStatusIncomplete, false},
		{stripe.SubscriptionStatusIncompleteExpired, false},
		{stripe.SubscriptionStatusUnpaid, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.want, isLiveSubscription(tc.status))
		})
	}
}
