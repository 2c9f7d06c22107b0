package router

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/FelixBrandt/ShopHook/app/controllers"
	"github.com/FelixBrandt/ShopHook/internal/pkg/database"
	"github.com/FelixBrandt/ShopHook/internal/pkg/env"
	"github.com/FelixBrandt/ShopHook/internal/pkg/payments"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	provider := payments.NewPaymentClientFromEnv()
	if err := provider.Validate(); err != nil {
		// Boot anyway: deliveries needing the provider fail transient and the
		// sender redelivers once configuration is fixed.
		log.Printf("payment provider configuration incomplete: %v", err)
	}

	svc := payments.NewServiceFromDB(
		database.GetDB(),
		provider,
		env.GetEnv("PAYMENT_WEBHOOK_SECRET", ""),
	)
	webhookController := controllers.NewWebhookController(svc)

	group := app.Group("/payments", limiter.New(limiter.Config{
		Max:        webhookRateLimit(),
		Expiration: time.Minute,
		Storage: redis.New(redis.Config{
			Host: env.GetEnv("CACHE_HOST", "localhost"),
			Port: cachePort(),
		}),
	}))
	group.Post("/webhook", webhookController.HandlePaymentWebhook)

	app.Get("/payments/webhook/stats", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), webhookController.HandleWebhookStats)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func webhookRateLimit() int {
	if n, err := strconv.Atoi(env.GetEnv("WEBHOOK_RATE_LIMIT", "120")); err == nil && n > 0 {
		return n
	}
	return 120
}

func cachePort() int {
	if n, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379")); err == nil && n > 0 {
		return n
	}
	return 6379
}
