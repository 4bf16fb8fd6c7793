package notifications

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
)

// SendGrantConfirmationActivityName delivers the access-confirmation message.
const SendGrantConfirmationActivityName = "entitlements.activities.SendGrantConfirmation"

// Activities groups activities operating on the entitlements bounded context.
type Activities struct {
	notifier ports.Notifier
}

// NewActivities wires the notifier into the Temporal activities bundle.
func NewActivities(notifier ports.Notifier) *Activities {
	return &Activities{notifier: notifier}
}

// SendGrantConfirmation delivers the confirmation for a persisted grant.
func (a *Activities) SendGrantConfirmation(ctx context.Context, grant domain.AccessGrant) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.notifier == nil {
		logger.Error("grant confirmation activity not initialized", "identity", grant.Identity)
		return errors.New("grant confirmation activity not initialized")
	}
	logger.Info("SendGrantConfirmation activity started", "identity", grant.Identity)
	if err := a.notifier.SendGrantConfirmation(ctx, grant); err != nil {
		logger.Error("SendGrantConfirmation activity failed", "identity", grant.Identity, "error", err)
		return err
	}
	logger.Info("SendGrantConfirmation activity completed", "identity", grant.Identity)
	return nil
}
