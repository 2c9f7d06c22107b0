package counter

import (
	"context"
	"strconv"

	"github.com/FelixBrandt/ShopHook/internal/pkg/cache"
)

const webhookOutcomesKey = "webhook:counters:outcomes"

// AddWebhookOutcome increments the counter for one delivery outcome
// (processed, ignored, duplicate, in_flight, failed) in Redis.
func AddWebhookOutcome(outcome string) error {
	if outcome == "" {
		return nil
	}
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookOutcomesKey, outcome, 1).Err()
}

// WebhookOutcomeSnapshot returns the current per-outcome counts.
func WebhookOutcomeSnapshot() (map[string]int64, error) {
	ctx := context.Background()
	data, err := cache.GetClient().HGetAll(ctx, webhookOutcomesKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(data))
	for field, v := range data {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			continue
		}
		out[field] = n
	}
	return out, nil
}
