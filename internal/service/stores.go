// Package service implements the account balance engine, the transaction
// processor, and the user/auth operations around them. Persistence is
// consumed through narrow store interfaces so the engine stays stateless and
// testable against in-memory fakes.
package service

import (
	"context"

	"github.com/eaglebank/eagle-bank/internal/models"
)

// UserStore is the persistence collaborator for user identity records.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
}

// AccountStore is the persistence collaborator for bank accounts. Update is
// compare-and-swapped on the account's version counter; a stale write returns
// a Conflict.
type AccountStore interface {
	Create(ctx context.Context, account *models.BankAccount) error
	GetByAccountNumber(ctx context.Context, accountNumber string) (*models.BankAccount, error)
	ListByUserID(ctx context.Context, userID string) ([]models.BankAccount, error)
	Update(ctx context.Context, account *models.BankAccount) error
	Delete(ctx context.Context, accountNumber string) error
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
}

// LedgerStore is the append-only transaction ledger. ApplyPosting commits the
// account balance CAS-update and the ledger insert as one unit, returning a
// Conflict when the account version is stale.
type LedgerStore interface {
	ApplyPosting(ctx context.Context, account *models.BankAccount, txn *models.Transaction) error
	ListByAccountNumber(ctx context.Context, accountNumber string) ([]models.Transaction, error)
	GetByIDAndAccountNumber(ctx context.Context, transactionID, accountNumber string) (*models.Transaction, error)
}

// EventPublisher emits post-commit domain events. Publish failures never fail
// the operation that produced them.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountViewCache accelerates account reads. Never authoritative.
type AccountViewCache interface {
	Get(ctx context.Context, accountNumber string) (*models.BankAccount, bool)
	Put(ctx context.Context, account *models.BankAccount)
	Invalidate(ctx context.Context, accountNumber string)
}
