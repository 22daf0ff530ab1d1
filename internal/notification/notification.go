package notification

import (
	"context"
	"log/slog"
)

const (
	// KindDepositReceipt is sent after a deposit is recorded.
	KindDepositReceipt = "deposit_receipt"
	// KindWithdrawReceipt is sent after a withdrawal is recorded.
	KindWithdrawReceipt = "withdraw_receipt"
)

// Message describes a receipt payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers receipts to the account holder.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier prints receipts to the structured logger, standing in for a
// receipt printer.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the receipt to the logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("receipt", "kind", message.Kind, "username", message.Destination, "body", message.Body)
	return nil
}
