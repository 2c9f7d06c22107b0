package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication covers missing or invalid signature/idempotency
	// headers. Nothing is persisted when it is returned.
	ErrAuthentication = errors.New("webhook authentication failed")

	// ErrSecretNotConfigured is returned when PAYMENT_WEBHOOK_SECRET is unset.
	// It must surface loudly to operators instead of silently accepting.
	ErrSecretNotConfigured = errors.New("payment webhook secret is not configured")
)

// ProviderError marks a transient failure while fetching the canonical
// payment from the provider. The enclosing unit of work must not persist
// anything so the sender's redelivery retries cleanly.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider request failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
