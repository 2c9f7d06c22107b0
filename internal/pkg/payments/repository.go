package payments

import (
	"context"
	"errors"
	"time"

	"github.com/FelixBrandt/ShopHook/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the transactional DB operations of the webhook
// pipeline. Each method is one atomic unit of work.
type Repository interface {
	ClaimEvent(ctx context.Context, in ClaimInput) (*ClaimResult, error)
	MarkIgnored(ctx context.Context, eventID uint, claimToken string) error
	FinalizeProcessed(ctx context.Context, in FinalizeInput) (*FinalizeResult, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a webhook repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// ClaimEvent records the delivery in the ledger and claims it for this
// attempt. The row lock is only held for the duration of this short
// transaction; the provider lookup happens outside of it.
func (r *gormRepository) ClaimEvent(ctx context.Context, in ClaimInput) (*ClaimResult, error) {
	var result *ClaimResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		candidate := models.WebhookEvent{
			IdempotencyKey: in.IdempotencyKey,
			Signature:      in.Signature,
			EventType:      in.EventType,
			PayloadJSON:    in.PayloadJSON,
			Lifecycle:      models.WebhookLifecycleReceived,
			ClaimToken:     in.ClaimToken,
			ClaimedAt:      &now,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).Create(&candidate)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			result = &ClaimResult{Event: &candidate, State: ClaimNew}
			return nil
		}

		// The key was seen before. Lock the row and decide whether it is a
		// finished duplicate, a live concurrent attempt, or a stalled one.
		var event models.WebhookEvent
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("idempotency_key = ?", in.IdempotencyKey).
			First(&event).Error; err != nil {
			return err
		}

		if event.IsTerminal() {
			result = &ClaimResult{Event: &event, State: ClaimDuplicate}
			return nil
		}
		if event.ClaimedAt != nil && now.Sub(*event.ClaimedAt) < in.LeaseTTL {
			result = &ClaimResult{Event: &event, State: ClaimInFlight}
			return nil
		}

		// A prior attempt started but never finished. Take over the claim and
		// refresh the delivery data for this resume.
		updates := map[string]interface{}{
			"signature":    in.Signature,
			"event_type":   in.EventType,
			"payload_json": in.PayloadJSON,
			"claim_token":  in.ClaimToken,
			"claimed_at":   &now,
		}
		if err := tx.Model(&event).Updates(updates).Error; err != nil {
			return err
		}
		result = &ClaimResult{Event: &event, State: ClaimResumed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkIgnored moves a claimed event to its terminal ignored state. A stale
// claim token means another attempt finished first, which is a no-op.
func (r *gormRepository) MarkIgnored(ctx context.Context, eventID uint, claimToken string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		return tx.Model(&models.WebhookEvent{}).
			Where("id = ? AND lifecycle = ? AND claim_token = ?", eventID, models.WebhookLifecycleReceived, claimToken).
			Updates(map[string]interface{}{
				"lifecycle":    models.WebhookLifecycleIgnored,
				"processed_at": &now,
			}).Error
	})
}

// FinalizeProcessed applies the resolved outcome in one short transaction:
// re-validate the claimed ledger row, lock the order row, run the conditional
// update and mark the event processed. The order row lock is what serializes
// two different events resolving to the same order.
func (r *gormRepository) FinalizeProcessed(ctx context.Context, in FinalizeInput) (*FinalizeResult, error) {
	var result *FinalizeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.WebhookEvent
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", in.EventID).
			First(&event).Error; err != nil {
			return err
		}
		if event.IsTerminal() || event.ClaimToken != in.ClaimToken {
			result = &FinalizeResult{State: FinalizeSuperseded}
			return nil
		}

		now := time.Now()

		var order models.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", in.OrderID).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Late webhook for an order that rolled back, or a foreign/test
			// payment. Terminal ignore, no alarm.
			if err := tx.Model(&event).Updates(map[string]interface{}{
				"lifecycle":    models.WebhookLifecycleIgnored,
				"processed_at": &now,
			}).Error; err != nil {
				return err
			}
			result = &FinalizeResult{State: FinalizeOrderMissing}
			return nil
		}
		if err != nil {
			return err
		}

		orderUpdates := map[string]interface{}{
			"status":            in.OrderStatus,
			"payment_reference": in.PaymentReference,
		}
		if in.OrderStatus == models.OrderStatusPaid {
			orderUpdates["paid_at"] = &now
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND (status <> ? OR payment_reference IS NULL OR payment_reference <> ?)",
				in.OrderID, in.OrderStatus, in.PaymentReference).
			Updates(orderUpdates)
		if res.Error != nil {
			return res.Error
		}

		if err := tx.Model(&event).Updates(map[string]interface{}{
			"lifecycle":        models.WebhookLifecycleProcessed,
			"resolved_outcome": in.OrderStatus,
			"processed_at":     &now,
		}).Error; err != nil {
			return err
		}

		result = &FinalizeResult{State: FinalizeApplied, OrderUpdated: res.RowsAffected > 0}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
