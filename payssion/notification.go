package payssion

import (
	"context"
	"errors"

	"github.com/flawlesshq/payssion-gateway/gateway"
	"github.com/flawlesshq/payssion-gateway/infra/config"
	"github.com/flawlesshq/payssion-gateway/infra/logger"
)

// Provider-reported payment states.
const (
	StateCompleted   = "completed"
	StatePaidPartial = "paid_partial"
	StatePending     = "pending"
	StateFailed      = "failed"
	StateExpired     = "expired"
	StateError       = "error"
)

// NotificationParams are the fields of an inbound payment notification,
// taken verbatim from the request. All strings; nothing here is trusted
// until the signature checks out.
type NotificationParams struct {
	OrderID   string
	PMID      string
	Amount    string
	Currency  string
	State     string
	Signature string
}

// Outcome describes what a notification did to the transaction.
type Outcome string

const (
	// OutcomeIgnored: no matching transaction in a mutable state, or a
	// concurrent delivery already applied the transition. Benign no-op.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeApproved: payment completed, transaction approved.
	OutcomeApproved Outcome = "approved"
	// OutcomeWaiting: partial or still-pending payment.
	OutcomeWaiting Outcome = "waiting"
	// OutcomeRefused: failure state, unknown state, or signature mismatch.
	OutcomeRefused Outcome = "refused"
)

// NotificationResult carries the outcome plus whether the refusal came from
// a signature that did not verify.
type NotificationResult struct {
	Outcome           Outcome
	SignatureMismatch bool
}

// AuditLogger records notification events for operator diagnosis. Satisfied
// by the OpenSearch notification logger.
type AuditLogger interface {
	LogNotification(ctx context.Context, event NotificationEvent)
}

// NotificationEvent is the audit record of one processed notification.
type NotificationEvent struct {
	OrderID           string `json:"order_id"`
	PMID              string `json:"pm_id"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	State             string `json:"state"`
	Outcome           string `json:"outcome"`
	SignatureMismatch bool   `json:"signature_mismatch"`
}

// NotificationProcessor applies provider notifications to transactions.
// It is the trust boundary of the whole gateway: the endpoint feeding it is
// unauthenticated, so nothing mutates before the signature verifies, and an
// invalid signature can only push a transaction toward failure, never
// resurrect one.
type NotificationProcessor struct {
	settings *config.GatewaySettings
	store    gateway.TransactionStore
	notifier gateway.Notifier
	gateway  gateway.PaymentGateway
	audit    AuditLogger
}

// NewNotificationProcessor wires the processor to its host collaborators.
// audit may be nil.
func NewNotificationProcessor(settings *config.GatewaySettings, store gateway.TransactionStore, notifier gateway.Notifier, gw gateway.PaymentGateway, audit AuditLogger) *NotificationProcessor {
	return &NotificationProcessor{
		settings: settings,
		store:    store,
		notifier: notifier,
		gateway:  gw,
		audit:    audit,
	}
}

// Process runs one notification through the state machine:
//
//	PENDING/WAITING --completed--------------> APPROVED (terminal)
//	PENDING/WAITING --pending/paid_partial---> WAITING
//	PENDING/WAITING --anything else----------> REFUSED (terminal, voided)
//
// Transactions in any other state are left untouched: a retried delivery
// for a finalized transaction is a deliberate no-op, which also stops
// replayed notifications from corrupting settled state. The returned error
// is informational; callers on the notification path acknowledge receipt
// regardless.
func (p *NotificationProcessor) Process(ctx context.Context, params NotificationParams) (NotificationResult, error) {
	result := NotificationResult{Outcome: OutcomeIgnored}

	txn, err := p.store.Load(ctx, params.OrderID)
	if err != nil {
		// Unknown order_id or a load failure: nothing to do yet. The
		// server-to-server flow always sends a valid id, so this path is
		// the payer's own browser wandering in.
		if !errors.Is(err, gateway.ErrNotFound) {
			logger.Warn("Failed to load transaction for notification", logger.LogContext{
				Provider: "payssion",
				Fields: map[string]any{
					"order_id": params.OrderID,
					"error":    err.Error(),
				},
			})
		}
		p.logAudit(ctx, params, result)
		return result, nil
	}

	if txn.Status != gateway.StatusPending && txn.Status != gateway.StatusWaiting {
		p.logAudit(ctx, params, result)
		return result, nil
	}

	valid := VerifySignature(SignatureParams{
		APIKey:        p.settings.APIKey,
		PMID:          params.PMID,
		Amount:        params.Amount,
		Currency:      params.Currency,
		TransactionID: params.OrderID,
		State:         params.State,
		SecretKey:     p.settings.SecretKey,
	}, params.Signature)

	if !valid {
		result.SignatureMismatch = true
		result.Outcome, err = p.refuse(ctx, txn)
		logger.Warn("Notification signature mismatch", logger.LogContext{
			Provider: "payssion",
			Fields: map[string]any{
				"order_id": params.OrderID,
				"state":    params.State,
			},
		})
		p.logAudit(ctx, params, result)
		return result, err
	}

	switch params.State {
	case StateCompleted:
		txn.Approve()
		result.Outcome, err = p.save(ctx, txn, OutcomeApproved)
	case StatePaidPartial, StatePending:
		txn.Status = gateway.StatusWaiting
		result.Outcome, err = p.save(ctx, txn, OutcomeWaiting)
	default:
		// failed, expired, error, and anything the protocol grows later.
		// Closed-enum on purpose: an unrecognized state must not leave the
		// payer waiting forever.
		result.Outcome, err = p.refuse(ctx, txn)
	}

	p.logAudit(ctx, params, result)
	return result, err
}

// refuse moves the transaction to REFUSED, releases the gateway hold and
// persists.
func (p *NotificationProcessor) refuse(ctx context.Context, txn *gateway.Transaction) (Outcome, error) {
	txn.Refuse()
	if p.gateway != nil {
		if err := p.gateway.Void(ctx, txn); err != nil {
			logger.Warn("Gateway void failed", logger.LogContext{
				Provider: "payssion",
				Fields: map[string]any{
					"transaction_id": txn.ID,
					"error":          err.Error(),
				},
			})
		}
	}
	return p.save(ctx, txn, OutcomeRefused)
}

// save persists the transition and dispatches the customer notification
// exactly once. A version conflict means a concurrent delivery got there
// first; the transition is already applied and this delivery degrades to a
// no-op.
func (p *NotificationProcessor) save(ctx context.Context, txn *gateway.Transaction, outcome Outcome) (Outcome, error) {
	if err := p.store.Save(ctx, txn); err != nil {
		if errors.Is(err, gateway.ErrVersionConflict) {
			return OutcomeIgnored, nil
		}
		return OutcomeIgnored, err
	}

	if err := p.notifier.SendNotification(ctx, txn); err != nil {
		logger.Warn("Failed to dispatch customer notification", logger.LogContext{
			Provider: "payssion",
			Fields: map[string]any{
				"transaction_id": txn.ID,
				"error":          err.Error(),
			},
		})
	}

	return outcome, nil
}

func (p *NotificationProcessor) logAudit(ctx context.Context, params NotificationParams, result NotificationResult) {
	if p.audit == nil {
		return
	}
	p.audit.LogNotification(ctx, NotificationEvent{
		OrderID:           params.OrderID,
		PMID:              params.PMID,
		Amount:            params.Amount,
		Currency:          params.Currency,
		State:             params.State,
		Outcome:           string(result.Outcome),
		SignatureMismatch: result.SignatureMismatch,
	})
}
