package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw      string
		expected Status
	}{
		{"success", StatusSuccess},
		{"SUCCESSFUL", StatusSuccess},
		{"Completed", StatusSuccess},
		{"paid", StatusSuccess},
		{" paid ", StatusSuccess},
		{"pending", StatusPending},
		{"processing", StatusPending},
		{"requires_payment_method", StatusPending},
		{"failed", StatusFailed},
		{"cancelled", StatusFailed},
		{"refunded", StatusFailed},
		{"", StatusFailed},
		{"garbage", StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeStatus(tt.raw))
		})
	}
}
