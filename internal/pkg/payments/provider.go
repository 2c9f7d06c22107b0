package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FelixBrandt/ShopHook/internal/pkg/env"
	"github.com/go-playground/validator/v10"
)

// PaymentProvider fetches the authoritative current state of a payment,
// independent of which notification triggered the lookup.
type PaymentProvider interface {
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// PaymentClient talks to the external payment provider's REST API.
type PaymentClient struct {
	BaseURL     string `validate:"required,url"`
	AccessToken string `validate:"required"`

	HTTPClient *http.Client `validate:"-"`
}

// NewPaymentClientFromEnv builds a client from PAYMENT_API_* configuration.
func NewPaymentClientFromEnv() *PaymentClient {
	return &PaymentClient{
		BaseURL:     strings.TrimSpace(env.GetEnv("PAYMENT_API_BASE_URL", "")),
		AccessToken: strings.TrimSpace(env.GetEnv("PAYMENT_API_TOKEN", "")),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Validate checks the client configuration before it is put into service.
func (c *PaymentClient) Validate() error {
	return validator.New().Struct(c)
}

// GetPayment returns the canonical payment status and the order id carried in
// the payment's metadata. Any network, HTTP or decoding failure is a
// *ProviderError so the caller can abort without persisting anything.
func (c *PaymentClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	id := strings.TrimSpace(paymentID)
	if id == "" {
		return nil, errors.New("payment id is required")
	}

	u := strings.TrimRight(c.BaseURL, "/") + "/v1/payments/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{Err: fmt.Errorf("get payment %s: status=%d body=%s", id, resp.StatusCode, string(body))}
	}

	type rawPayment struct {
		ID       string                 `json:"id"`
		Status   string                 `json:"status"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	var raw rawPayment
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ProviderError{Err: err}
	}
	if strings.TrimSpace(raw.Status) == "" {
		return nil, &ProviderError{Err: errors.New("payment response missing status")}
	}
	if strings.TrimSpace(raw.ID) == "" {
		raw.ID = id
	}

	return &Payment{
		ID:      strings.TrimSpace(raw.ID),
		Status:  strings.TrimSpace(raw.Status),
		OrderID: orderIDFromMetadata(raw.Metadata),
	}, nil
}

// orderIDFromMetadata tolerates both numeric and string-encoded order ids;
// providers are not consistent about metadata value types.
func orderIDFromMetadata(metadata map[string]interface{}) uint {
	v, ok := metadata["order_id"]
	if !ok {
		return 0
	}
	switch id := v.(type) {
	case float64:
		if id > 0 {
			return uint(id)
		}
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64); err == nil {
			return uint(n)
		}
	case json.Number:
		if n, err := strconv.ParseUint(id.String(), 10, 64); err == nil {
			return uint(n)
		}
	}
	return 0
}
