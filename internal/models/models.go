// Package models holds the domain types. Balance-affecting invariants live as
// methods on BankAccount so every mutation path enforces them.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eaglebank/eagle-bank/internal/apperr"
)

// Fixed institutional values. Every account carries them.
const (
	SortCode = "10-10-10"
	Currency = "GBP"
)

// AccountType is a closed enum; personal is currently the only member.
type AccountType string

const AccountTypePersonal AccountType = "personal"

// ParseAccountType validates the external representation of an account type.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(strings.ToLower(strings.TrimSpace(s))) {
	case AccountTypePersonal:
		return AccountTypePersonal, nil
	default:
		return "", apperr.InvalidArgument("invalid account type: %s", s)
	}
}

// TransactionType is deposit or withdrawal, nothing else.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// ParseTransactionType validates the external representation of a
// transaction type.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TransactionDeposit:
		return TransactionDeposit, nil
	case TransactionWithdrawal:
		return TransactionWithdrawal, nil
	default:
		return "", apperr.InvalidArgument("invalid transaction type: %s", s)
	}
}

type Address struct {
	Line1    string `json:"line1" validate:"required"`
	Line2    string `json:"line2,omitempty"`
	Line3    string `json:"line3,omitempty"`
	Town     string `json:"town" validate:"required"`
	County   string `json:"county" validate:"required"`
	Postcode string `json:"postcode" validate:"required"`
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	PhoneNumber  string
	Address      Address
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BankAccount is the unit of contention: concurrent postings against the same
// account number race on Balance, serialized by the Version counter at write
// time.
type BankAccount struct {
	AccountNumber string
	UserID        string
	SortCode      string
	Name          string
	AccountType   AccountType
	Balance       decimal.Decimal
	Currency      string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Deposit adds amount to the balance. Amount must be positive.
func (a *BankAccount) Deposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperr.InvalidArgument("deposit amount must be positive")
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Withdraw subtracts amount from the balance. Amount must be positive and
// covered by the available balance; the balance never goes negative.
func (a *BankAccount) Withdraw(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperr.InvalidArgument("withdrawal amount must be positive")
	}
	if a.Balance.LessThan(amount) {
		return apperr.InsufficientFunds(a.Balance, amount)
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Rename replaces the display name. Blank names are rejected.
func (a *BankAccount) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.InvalidArgument("account name cannot be blank")
	}
	a.Name = name
	return nil
}

// Retype replaces the account type.
func (a *BankAccount) Retype(accountType AccountType) error {
	if accountType == "" {
		return apperr.InvalidArgument("account type cannot be blank")
	}
	a.AccountType = accountType
	return nil
}

// Transaction is an immutable ledger entry. UserID is the owner of the
// account captured at creation time; it is never re-synced.
type Transaction struct {
	ID            string
	AccountNumber string
	UserID        string
	Amount        decimal.Decimal
	Currency      string
	Type          TransactionType
	Reference     string
	Seq           int64
	CreatedAt     time.Time
}
