package payments

import (
	"testing"

	"github.com/FelixBrandt/ShopHook/app/models"
)

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "approved", want: models.OrderStatusPaid},
		{in: "rejected", want: models.OrderStatusFailed},
		{in: "cancelled", want: models.OrderStatusFailed},
		{in: "pending", want: models.OrderStatusPending},
		{in: "in_process", want: models.OrderStatusPending},
		{in: "APPROVED", want: models.OrderStatusPaid},
		{in: " approved ", want: models.OrderStatusPaid},
		{in: "charged_back", want: models.OrderStatusPending},
		{in: "something_else", want: models.OrderStatusPending},
		{in: "", want: models.OrderStatusPending},
	}

	for _, tt := range tests {
		if got := MapProviderStatus(tt.in); got != tt.want {
			t.Fatalf("MapProviderStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPaymentEvent(t *testing.T) {
	if !IsPaymentEvent("payment") || !IsPaymentEvent(" Payment ") {
		t.Fatalf("expected payment event types to be recognized")
	}
	if IsPaymentEvent("merchant_order") || IsPaymentEvent("") {
		t.Fatalf("expected non-payment event types to be rejected")
	}
}
