package payments

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultClaimLease bounds how long an attempt owns a claimed ledger row. It
// must exceed the request deadline so a live attempt is never resumed while
// it is still running; the sender's redelivery window is far larger.
const DefaultClaimLease = 30 * time.Second

// Service coordinates one webhook delivery end to end: authenticate, claim
// the ledger row, resolve the canonical payment, reconcile the order and
// finalize the ledger. All dependencies are injected.
type Service struct {
	repo     Repository
	provider PaymentProvider
	secret   string
	leaseTTL time.Duration
}

// NewService creates a webhook service from injected dependencies.
func NewService(repo Repository, provider PaymentProvider, secret string) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		secret:   secret,
		leaseTTL: DefaultClaimLease,
	}
}

// NewServiceFromDB creates a webhook service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, provider PaymentProvider, secret string) *Service {
	return NewService(NewRepository(db), provider, secret)
}

// HandleNotification processes one inbound delivery. It is safe to call any
// number of times, sequentially or concurrently, for the same idempotency
// key: at most one call performs the effective state transition.
func (s *Service) HandleNotification(ctx context.Context, in HandleInput) (*HandleResult, error) {
	if strings.TrimSpace(in.IdempotencyKey) == "" {
		return nil, ErrAuthentication
	}
	if err := VerifySignature(in.Body, in.SignatureHeader, s.secret); err != nil {
		return nil, err
	}

	// The body is untrusted; a malformed one is recorded and ignored rather
	// than rejected, the sender already authenticated itself.
	var notification Notification
	_ = json.Unmarshal(in.Body, &notification)

	claimToken := uuid.NewString()
	claim, err := s.repo.ClaimEvent(ctx, ClaimInput{
		IdempotencyKey: strings.TrimSpace(in.IdempotencyKey),
		Signature:      strings.TrimSpace(in.SignatureHeader),
		EventType:      strings.TrimSpace(notification.Type),
		PayloadJSON:    string(in.Body),
		ClaimToken:     claimToken,
		LeaseTTL:       s.leaseTTL,
	})
	if err != nil {
		return nil, err
	}

	switch claim.State {
	case ClaimDuplicate:
		res := &HandleResult{Outcome: OutcomeDuplicate}
		if claim.Event.ResolvedOutcome != nil {
			res.OrderStatus = *claim.Event.ResolvedOutcome
		}
		return res, nil
	case ClaimInFlight:
		// Another worker owns this key right now. Ack without doing work; if
		// that worker dies, the next redelivery resumes after the lease.
		return &HandleResult{Outcome: OutcomeInFlight}, nil
	}

	if !IsPaymentEvent(notification.Type) || strings.TrimSpace(notification.Data.ID) == "" {
		if err := s.repo.MarkIgnored(ctx, claim.Event.ID, claimToken); err != nil {
			return nil, err
		}
		return &HandleResult{Outcome: OutcomeIgnored}, nil
	}

	// Canonical status lookup, outside any lock or transaction. On failure
	// the event stays received and the claim lease expires, so the sender's
	// redelivery is the retry path.
	payment, err := s.provider.GetPayment(ctx, notification.Data.ID)
	if err != nil {
		return nil, err
	}

	if payment.OrderID == 0 {
		if err := s.repo.MarkIgnored(ctx, claim.Event.ID, claimToken); err != nil {
			return nil, err
		}
		return &HandleResult{Outcome: OutcomeIgnored}, nil
	}

	status := MapProviderStatus(payment.Status)
	final, err := s.repo.FinalizeProcessed(ctx, FinalizeInput{
		EventID:          claim.Event.ID,
		ClaimToken:       claimToken,
		OrderID:          payment.OrderID,
		OrderStatus:      status,
		PaymentReference: payment.ID,
	})
	if err != nil {
		return nil, err
	}

	switch final.State {
	case FinalizeOrderMissing:
		return &HandleResult{Outcome: OutcomeIgnored}, nil
	case FinalizeSuperseded:
		return &HandleResult{Outcome: OutcomeDuplicate}, nil
	default:
		return &HandleResult{Outcome: OutcomeProcessed, OrderStatus: status}, nil
	}
}
