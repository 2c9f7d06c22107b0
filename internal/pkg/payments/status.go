package payments

import (
	"strings"

	"github.com/FelixBrandt/ShopHook/app/models"
)

// MapProviderStatus maps the provider's payment status vocabulary to the
// internal order status. The mapping is total: unrecognized values fall back
// to pending instead of failing.
func MapProviderStatus(providerStatus string) string {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "approved":
		return models.OrderStatusPaid
	case "rejected", "cancelled":
		return models.OrderStatusFailed
	case "pending", "in_process":
		return models.OrderStatusPending
	default:
		return models.OrderStatusPending
	}
}

// IsPaymentEvent reports whether the sender's event classification is the one
// type this pipeline handles.
func IsPaymentEvent(eventType string) bool {
	return strings.ToLower(strings.TrimSpace(eventType)) == "payment"
}
