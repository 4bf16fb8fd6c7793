package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	entitlementsports "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
)

// EventTypeCheckoutCompleted is the only event type that mutates state; every
// other recognized type is acknowledged without effect.
const EventTypeCheckoutCompleted = "checkout.completed"

// Outcome is the terminal state of one webhook delivery. Each value maps to a
// distinct acknowledgement so the payment processor's retry behavior stays
// predictable.
type Outcome int

const (
	// OutcomeRejected: the delivery could not be authenticated. Permanent.
	OutcomeRejected Outcome = iota
	// OutcomeIgnored: authenticated but not a payment-completed event. Acked.
	OutcomeIgnored
	// OutcomeInvalid: payment-completed but the payload is unusable. Permanent.
	OutcomeInvalid
	// OutcomeStoreFailed: the entitlement store is unavailable. Retryable.
	OutcomeStoreFailed
	// OutcomeGranted: access was durably granted.
	OutcomeGranted
)

// String names the outcome for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeStoreFailed:
		return "store_failed"
	case OutcomeGranted:
		return "granted"
	default:
		return "unknown"
	}
}

// Delivery is one inbound webhook attempt. Body is the raw payload, already
// size-capped by the transport before verification work is spent on it.
type Delivery struct {
	Signature string
	Body      []byte
}

// Result is the processor's terminal report for one delivery.
type Result struct {
	Outcome   Outcome
	EventType string
	Err       error
}

type paymentEventPayload struct {
	Type              string `json:"type"`
	Email             string `json:"email"`
	TransactionRef    string `json:"transactionRef"`
	CustomerReference string `json:"customerRef"`
}

// Processor drives a delivery through verify, parse, and grant. It is the
// only component allowed to turn an inbound payment event into an
// entitlement mutation.
type Processor struct {
	verifier     *Verifier
	entitlements entitlementsports.Service
	logger       *slog.Logger
}

// NewProcessor wires the webhook processor with its dependencies.
func NewProcessor(verifier *Verifier, entitlements entitlementsports.Service, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{verifier: verifier, entitlements: entitlements, logger: logger}
}

// Process authenticates and applies one delivery. Verification strictly
// precedes parsing: an unverifiable body is rejected without being decoded,
// so unauthenticated input never shapes the outcome beyond "rejected".
func (p *Processor) Process(ctx context.Context, delivery Delivery) Result {
	if err := p.verifier.Verify(delivery.Signature, delivery.Body); err != nil {
		p.logger.Warn("webhook delivery rejected", slog.String("error", err.Error()))
		return Result{Outcome: OutcomeRejected, Err: err}
	}

	var payload paymentEventPayload
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		p.logger.Warn("webhook payload undecodable", slog.String("error", err.Error()))
		return Result{Outcome: OutcomeInvalid, Err: err}
	}

	if payload.Type != EventTypeCheckoutCompleted {
		p.logger.Info("webhook event ignored", slog.String("eventType", payload.Type))
		return Result{Outcome: OutcomeIgnored, EventType: payload.Type}
	}

	if strings.TrimSpace(payload.Email) == "" || strings.TrimSpace(payload.TransactionRef) == "" {
		p.logger.Warn("webhook payload missing identity or transaction reference",
			slog.String("eventType", payload.Type))
		return Result{Outcome: OutcomeInvalid, EventType: payload.Type,
			Err: errors.New("missing identity or transaction reference")}
	}

	grant, err := p.entitlements.Grant(ctx, entitlementsports.GrantCommand{
		RawIdentity:       payload.Email,
		SourceReference:   payload.TransactionRef,
		CustomerReference: payload.CustomerReference,
	})
	if err != nil {
		if errors.Is(err, entitlementsports.ErrStoreUnavailable) {
			p.logger.Error("entitlement store unavailable for webhook grant", slog.String("error", err.Error()))
			return Result{Outcome: OutcomeStoreFailed, EventType: payload.Type, Err: err}
		}
		// Anything else on the grant path is bad input (malformed identity),
		// which a retry cannot fix.
		p.logger.Warn("webhook grant invalid", slog.String("error", err.Error()))
		return Result{Outcome: OutcomeInvalid, EventType: payload.Type, Err: err}
	}

	p.logger.Info("webhook grant applied",
		slog.String("identity", grant.Identity),
		slog.Time("validUntil", grant.ValidUntil),
		slog.String("sourceReference", grant.SourceReference))
	return Result{Outcome: OutcomeGranted, EventType: payload.Type}
}
