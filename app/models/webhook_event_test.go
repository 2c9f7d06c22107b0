package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebhookEventIsTerminal(t *testing.T) {
	e := &WebhookEvent{Lifecycle: WebhookLifecycleReceived}
	assert.False(t, e.IsTerminal())

	e.Lifecycle = WebhookLifecycleIgnored
	assert.True(t, e.IsTerminal())

	e.Lifecycle = WebhookLifecycleProcessed
	assert.True(t, e.IsTerminal())
}
