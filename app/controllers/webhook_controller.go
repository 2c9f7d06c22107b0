package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/FelixBrandt/ShopHook/internal/pkg/metrics/counter"
	"github.com/FelixBrandt/ShopHook/internal/pkg/payments"
)

const webhookRequestTimeout = 15 * time.Second

// WebhookService processes one payment notification end to end.
type WebhookService interface {
	HandleNotification(ctx context.Context, in payments.HandleInput) (*payments.HandleResult, error)
}

// WebhookController handles inbound payment-provider notifications.
type WebhookController struct {
	svc WebhookService
}

// NewWebhookController creates a webhook controller with an injected service.
func NewWebhookController(svc WebhookService) *WebhookController {
	return &WebhookController{svc: svc}
}

// HandlePaymentWebhook accepts POST /payments/webhook. Every response body is
// safe to redeliver against and leaks no internals to the sender.
func (wc *WebhookController) HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	ctx, cancel := context.WithTimeout(context.Background(), webhookRequestTimeout)
	defer cancel()

	result, err := wc.svc.HandleNotification(ctx, payments.HandleInput{
		Body:            rawBody,
		SignatureHeader: strings.TrimSpace(c.Get("X-Signature")),
		IdempotencyKey:  strings.TrimSpace(c.Get("X-Idempotency-Key")),
	})
	if err != nil {
		return wc.respondError(c, err)
	}

	recordOutcome(string(result.Outcome))
	if result.Outcome == payments.OutcomeDuplicate {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "idempotent": true})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleWebhookStats exposes the per-outcome counters for operators.
func (wc *WebhookController) HandleWebhookStats(c *fiber.Ctx) error {
	snapshot, err := counter.WebhookOutcomeSnapshot()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "outcomes": snapshot})
}

func (wc *WebhookController) respondError(c *fiber.Ctx, err error) error {
	var providerErr *payments.ProviderError

	switch {
	case errors.Is(err, payments.ErrAuthentication):
		recordOutcome("rejected")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false})
	case errors.Is(err, payments.ErrSecretNotConfigured):
		// Responding 500 here keeps the sender retrying instead of silently
		// dropping webhooks while the secret is misconfigured.
		log.Printf("webhook rejected: %v", err)
		recordOutcome("failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false})
	case errors.As(err, &providerErr):
		log.Printf("webhook deferred, provider lookup failed: %v", err)
		recordOutcome("failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false})
	default:
		log.Printf("webhook processing failed: %v", err)
		recordOutcome("failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false})
	}
}

// recordOutcome is best effort; a cache hiccup must never fail a delivery.
func recordOutcome(outcome string) {
	if err := counter.AddWebhookOutcome(outcome); err != nil {
		log.Printf("failed to record webhook outcome %q: %v", outcome, err)
	}
}
