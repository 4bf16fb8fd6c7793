package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
	notifyworkflows "github.com/moneta-site/go-calculators-api/internal/platform/temporal/workflows/notifications"
)

var (
	_ ports.NotificationDispatcher = (*TemporalDispatcher)(nil)
	_ ports.NotificationDispatcher = (*InlineDispatcher)(nil)
)

// TemporalDispatcher starts grant-notification workflows on a Temporal
// cluster so confirmations survive process restarts and retry durably.
type TemporalDispatcher struct {
	client    client.Client
	taskQueue string
}

// NewTemporalDispatcher wires a Temporal client into the dispatcher.
func NewTemporalDispatcher(c client.Client) *TemporalDispatcher {
	return &TemporalDispatcher{client: c, taskQueue: notifyworkflows.GrantNotificationTaskQueue}
}

// DispatchGrantNotification starts the confirmation workflow. The workflow ID
// derives from identity and source reference, so a replayed delivery reuses
// the already-started workflow instead of sending a second confirmation.
func (d *TemporalDispatcher) DispatchGrantNotification(ctx context.Context, grant domain.AccessGrant) error {
	if d == nil || d.client == nil {
		return errors.New("temporal notification dispatcher not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        buildNotificationWorkflowID(grant),
		TaskQueue: d.taskQueue,
	}
	input := notifyworkflows.GrantNotificationWorkflowInput{
		Grant:   grant,
		TraceID: workflowTraceID(ctx),
	}
	_, err := d.client.ExecuteWorkflow(ctx, options, notifyworkflows.GrantNotificationWorkflow, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil
		}
		return err
	}
	return nil
}

// InlineDispatcher delivers the notification synchronously, useful for tests
// or when no Temporal cluster is reachable.
type InlineDispatcher struct {
	notifier ports.Notifier
}

// NewInlineDispatcher wraps the notifier for synchronous delivery.
func NewInlineDispatcher(notifier ports.Notifier) *InlineDispatcher {
	return &InlineDispatcher{notifier: notifier}
}

// DispatchGrantNotification delegates to the notifier without durable orchestration.
func (d *InlineDispatcher) DispatchGrantNotification(ctx context.Context, grant domain.AccessGrant) error {
	if d == nil || d.notifier == nil {
		return errors.New("inline notification dispatcher not configured")
	}
	return d.notifier.SendGrantConfirmation(ctx, grant)
}

func buildNotificationWorkflowID(grant domain.AccessGrant) string {
	sum := sha256.Sum256([]byte(grant.Identity + "|" + grant.SourceReference))
	// First 16 hex chars keep workflow IDs readable while remaining deterministic.
	return fmt.Sprintf("grant-notify-%s", hex.EncodeToString(sum[:8]))
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
