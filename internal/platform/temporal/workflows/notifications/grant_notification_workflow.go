package notifications

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
	notifyactivities "github.com/moneta-site/go-calculators-api/internal/platform/temporal/activities/notifications"
)

const (
	// GrantNotificationWorkflowName is the public identifier for registering the workflow.
	GrantNotificationWorkflowName = "entitlements.workflows.GrantNotification"
	// GrantNotificationTaskQueue is the queue consumed by the notification worker.
	GrantNotificationTaskQueue = "ENTITLEMENT_NOTIFICATIONS"
)

// GrantNotificationWorkflowInput carries the persisted grant to confirm.
type GrantNotificationWorkflowInput struct {
	Grant   domain.AccessGrant
	TraceID string
}

// GrantNotificationWorkflow delivers the access confirmation with bounded
// retries. The grant is already durable when this workflow starts; exhausting
// the retries loses only the notification, never the entitlement.
func GrantNotificationWorkflow(ctx workflow.Context, input GrantNotificationWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("GrantNotificationWorkflow started", withTraceID(input.TraceID, "identity", input.Grant.Identity)...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}
	err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, options),
		notifyactivities.SendGrantConfirmationActivityName,
		input.Grant,
	).Get(ctx, nil)
	if err != nil {
		logger.Error("GrantNotificationWorkflow failed", withTraceID(input.TraceID, "identity", input.Grant.Identity, "error", err)...)
		return err
	}
	logger.Info("GrantNotificationWorkflow completed", withTraceID(input.TraceID, "identity", input.Grant.Identity)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
