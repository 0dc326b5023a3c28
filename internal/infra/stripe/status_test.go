package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripeStatus(t *testing.T) {
	str := func(s string) *string { return &s }

	cases := []struct {
		name string
		in   *string
		want string
	}{
		{"nil", nil, "none"},
		{"empty", str(""), "none"},
		{"whitespace", str("  "), "none"},
		{"active", str("active"), "active"},
		{"trialing", str("trialing"), "trialing"},
		{"past_due", str("past_due"), "past_due"},
		{"unpaid maps to past_due", str("unpaid"), "past_due"},
		{"canceled", str("canceled"), "canceled"},
		{"incomplete_expired maps to canceled", str("incomplete_expired"), "canceled"},
		{"unknown passes through", str("paused"), "paused"},
		{"trims whitespace", str(" active "), "active"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeStripeStatus(tc.in))
		})
	}
}
