package payments

import (
	"time"

	"github.com/FelixBrandt/ShopHook/app/models"
)

// Notification is the untrusted webhook body. Only the event type and the
// payment id are read from it; the embedded status field is sender-supplied
// and deliberately ignored.
type Notification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Payment is the canonical provider state, freshly fetched by id.
type Payment struct {
	ID      string
	Status  string
	OrderID uint
}

// ClaimState classifies the outcome of claiming a ledger row.
type ClaimState string

const (
	ClaimNew       ClaimState = "new"
	ClaimResumed   ClaimState = "resumed"
	ClaimDuplicate ClaimState = "duplicate"
	ClaimInFlight  ClaimState = "in_flight"
)

// ClaimInput carries the delivery data recorded in the ledger.
type ClaimInput struct {
	IdempotencyKey string
	Signature      string
	EventType      string
	PayloadJSON    string
	ClaimToken     string
	LeaseTTL       time.Duration
}

// ClaimResult is the ledger row plus how the caller got hold of it.
type ClaimResult struct {
	Event *models.WebhookEvent
	State ClaimState
}

// FinalizeState classifies the outcome of the reconciling transaction.
type FinalizeState string

const (
	FinalizeApplied      FinalizeState = "applied"
	FinalizeOrderMissing FinalizeState = "order_missing"
	FinalizeSuperseded   FinalizeState = "superseded"
)

// FinalizeInput carries the resolved outcome to write.
type FinalizeInput struct {
	EventID          uint
	ClaimToken       string
	OrderID          uint
	OrderStatus      string
	PaymentReference string
}

// FinalizeResult reports whether the order row was actually touched.
type FinalizeResult struct {
	State        FinalizeState
	OrderUpdated bool
}

// Outcome is the request-level result reported to the HTTP layer.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeInFlight  Outcome = "in_flight"
)

// HandleInput is one inbound delivery as received over HTTP.
type HandleInput struct {
	Body            []byte
	SignatureHeader string
	IdempotencyKey  string
}

// HandleResult is the processed delivery.
type HandleResult struct {
	Outcome     Outcome
	OrderStatus string
}
