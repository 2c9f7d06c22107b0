package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelixBrandt/ShopHook/internal/pkg/payments"
)

type stubWebhookService struct {
	result *payments.HandleResult
	err    error

	gotInput payments.HandleInput
}

func (s *stubWebhookService) HandleNotification(_ context.Context, in payments.HandleInput) (*payments.HandleResult, error) {
	s.gotInput = in
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newWebhookTestApp(svc WebhookService) *fiber.App {
	app := fiber.New()
	controller := NewWebhookController(svc)
	app.Post("/payments/webhook", controller.HandlePaymentWebhook)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest("POST", "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestHandlePaymentWebhook_Processed(t *testing.T) {
	svc := &stubWebhookService{result: &payments.HandleResult{Outcome: payments.OutcomeProcessed, OrderStatus: "paid"}}
	app := newWebhookTestApp(svc)

	status, body := postWebhook(t, app, []byte(`{"type":"payment","data":{"id":"p1"}}`), map[string]string{
		"X-Signature":       "ts=1,v1=abcd",
		"X-Idempotency-Key": "evt-1",
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.NotContains(t, body, "idempotent")

	assert.Equal(t, "evt-1", svc.gotInput.IdempotencyKey)
	assert.Equal(t, "ts=1,v1=abcd", svc.gotInput.SignatureHeader)
	assert.JSONEq(t, `{"type":"payment","data":{"id":"p1"}}`, string(svc.gotInput.Body))
}

func TestHandlePaymentWebhook_DuplicateAck(t *testing.T) {
	svc := &stubWebhookService{result: &payments.HandleResult{Outcome: payments.OutcomeDuplicate, OrderStatus: "paid"}}
	app := newWebhookTestApp(svc)

	status, body := postWebhook(t, app, []byte(`{}`), map[string]string{
		"X-Signature":       "ts=1,v1=abcd",
		"X-Idempotency-Key": "evt-1",
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["idempotent"])
}

func TestHandlePaymentWebhook_Unauthorized(t *testing.T) {
	svc := &stubWebhookService{err: payments.ErrAuthentication}
	app := newWebhookTestApp(svc)

	status, body := postWebhook(t, app, []byte(`{}`), nil)

	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, false, body["ok"])
	assert.Len(t, body, 1) // no internals leaked
}

func TestHandlePaymentWebhook_SecretNotConfigured(t *testing.T) {
	svc := &stubWebhookService{err: payments.ErrSecretNotConfigured}
	app := newWebhookTestApp(svc)

	status, body := postWebhook(t, app, []byte(`{}`), map[string]string{
		"X-Signature":       "ts=1,v1=abcd",
		"X-Idempotency-Key": "evt-1",
	})

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, false, body["ok"])
}

func TestHandlePaymentWebhook_TransientProviderFailure(t *testing.T) {
	svc := &stubWebhookService{err: &payments.ProviderError{Err: errors.New("timeout")}}
	app := newWebhookTestApp(svc)

	status, body := postWebhook(t, app, []byte(`{}`), map[string]string{
		"X-Signature":       "ts=1,v1=abcd",
		"X-Idempotency-Key": "evt-1",
	})

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, false, body["ok"])
}

func TestHandlePaymentWebhook_IgnoredAndInFlightLookLikeSuccess(t *testing.T) {
	for _, outcome := range []payments.Outcome{payments.OutcomeIgnored, payments.OutcomeInFlight} {
		svc := &stubWebhookService{result: &payments.HandleResult{Outcome: outcome}}
		app := newWebhookTestApp(svc)

		status, body := postWebhook(t, app, []byte(`{}`), map[string]string{
			"X-Signature":       "ts=1,v1=abcd",
			"X-Idempotency-Key": "evt-1",
		})

		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, true, body["ok"])
	}
}
