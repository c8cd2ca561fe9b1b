package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// AuditLogger consumes the ledger stream and writes a structured audit line
// for every committed posting. It is a read-only consumer: redelivery of an
// already-logged event only produces a duplicate log line, so no dedup state
// is needed.
type AuditLogger struct {
	log *zap.Logger
}

func NewAuditLogger(log *zap.Logger) *AuditLogger {
	return &AuditLogger{log: log}
}

// HandleEvent implements the subscriber Handler for the ledger stream.
func (a *AuditLogger) HandleEvent(_ context.Context, event Event) error {
	if event.Type != TransactionPosted {
		return nil
	}

	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	var data TransactionPostedEvent
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return fmt.Errorf("failed to unmarshal transaction.posted event: %w", err)
	}

	a.log.Info("transaction posted",
		zap.String("transactionId", data.TransactionID),
		zap.String("accountNumber", data.AccountNumber),
		zap.String("userId", data.UserID),
		zap.String("type", data.Type),
		zap.String("amount", data.Amount),
		zap.String("currency", data.Currency),
		zap.String("newBalance", data.NewBalance),
		zap.Time("at", event.Timestamp),
	)
	return nil
}
