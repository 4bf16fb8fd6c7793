package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier records grant confirmations in the structured log instead of
// sending mail. It stands in wherever no mail provider is configured and
// doubles as the development notifier.
type LogNotifier struct {
	logger        *slog.Logger
	basePublicURL string
}

// NewLogNotifier builds the notifier. basePublicURL is used to render the
// access link included in the confirmation.
func NewLogNotifier(logger *slog.Logger, basePublicURL string) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger, basePublicURL: strings.TrimRight(basePublicURL, "/")}
}

// SendGrantConfirmation logs the confirmation payload.
func (n *LogNotifier) SendGrantConfirmation(_ context.Context, grant domain.AccessGrant) error {
	n.logger.Info("grant confirmation",
		slog.String("identity", grant.Identity),
		slog.Time("validUntil", grant.ValidUntil),
		slog.String("accessUrl", n.AccessURL()),
		slog.String("validUntilDate", grant.ValidUntil.Format(time.DateOnly)),
	)
	return nil
}

// AccessURL renders the public link to the gated calculators.
func (n *LogNotifier) AccessURL() string {
	return fmt.Sprintf("%s/calculators", n.basePublicURL)
}
