// Package events publishes post-commit domain events to Redis Streams for
// audit and downstream integration. Events never carry balance authority:
// the ledger and account rows in PostgreSQL are the source of truth, and an
// event is only emitted after its write has committed.
package events

import "time"

// Event types
const (
	UserCreated = "user.created"
	UserDeleted = "user.deleted"

	AccountCreated = "account.created"
	AccountUpdated = "account.updated"
	AccountDeleted = "account.deleted"

	TransactionPosted = "transaction.posted"
)

// Stream names
const (
	UserEventsStream    = "user.events"
	AccountEventsStream = "account.events"
	LedgerEventsStream  = "ledger.events"
)

// Event is the envelope written to the stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type UserCreatedEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type UserDeletedEvent struct {
	UserID string `json:"userId"`
}

type AccountCreatedEvent struct {
	AccountNumber string `json:"accountNumber"`
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	AccountType   string `json:"accountType"`
}

type AccountUpdatedEvent struct {
	AccountNumber string `json:"accountNumber"`
	UserID        string `json:"userId"`
	Name          string `json:"name"`
}

type AccountDeletedEvent struct {
	AccountNumber string `json:"accountNumber"`
	UserID        string `json:"userId"`
}

// TransactionPostedEvent records a committed posting. Amounts and balances
// are fixed-point strings with two fraction digits.
type TransactionPostedEvent struct {
	TransactionID string `json:"transactionId"`
	AccountNumber string `json:"accountNumber"`
	UserID        string `json:"userId"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	Currency      string `json:"currency"`
	NewBalance    string `json:"newBalance"`
}
