package billing

import "testing"

func TestCompletedCheckout_Paid(t *testing.T) {
	tests := []struct {
		name          string
		status        string
		paymentStatus string
		want          bool
	}{
		{"complete and paid", SessionStatusComplete, PaymentStatusPaid, true},
		{"complete with trial", SessionStatusComplete, PaymentStatusNoCharge, true},
		{"complete but unpaid", SessionStatusComplete, "unpaid", false},
		{"open", "open", PaymentStatusPaid, false},
		{"expired", "expired", "unpaid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &CompletedCheckout{Status: tt.status, PaymentStatus: tt.paymentStatus}
			if got := c.Paid(); got != tt.want {
				t.Errorf("Paid() = %v, want %v", got, tt.want)
			}
		})
	}
}
