package ports

import (
	"context"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
)

// Notifier delivers the access-confirmation message after a grant. Failures
// are best-effort territory: the grant has already been persisted.
type Notifier interface {
	SendGrantConfirmation(ctx context.Context, grant domain.AccessGrant) error
}

// NotificationDispatcher decouples grant processing from notification
// delivery, either inline or via a durable workflow.
type NotificationDispatcher interface {
	DispatchGrantNotification(ctx context.Context, grant domain.AccessGrant) error
}
