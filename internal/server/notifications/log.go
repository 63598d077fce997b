package notifications

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// LogNotifier writes messages to the log instead of delivering them.
// It is used when no SMTP host is configured.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "log_notifier")}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	n.logger.Info(ctx, "Email not delivered (no SMTP host)", "to", msg.To, "subject", msg.Subject, "html", msg.HTML)
	return nil
}
