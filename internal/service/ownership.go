package service

import (
	"context"

	"github.com/eaglebank/eagle-bank/internal/apperr"
)

// OwnershipGuard is the authorization predicate consulted before every
// account- and user-scoped operation, independent of the transport layer.
//
// Ownership and existence are two separate predicates: the guard answers
// true for an account that does not exist, so that the operation's own
// lookup reports NotFound without the guard leaking existence.
type OwnershipGuard struct {
	accounts AccountStore
}

func NewOwnershipGuard(accounts AccountStore) *OwnershipGuard {
	return &OwnershipGuard{accounts: accounts}
}

// IsAccountOwner reports whether callerUserID may act on the account.
// A non-existent account is not a denial; store failures are.
func (g *OwnershipGuard) IsAccountOwner(ctx context.Context, accountNumber, callerUserID string) (bool, error) {
	account, err := g.accounts.GetByAccountNumber(ctx, accountNumber)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return account.UserID == callerUserID, nil
}

// IsSelf reports whether the caller is acting on their own user record.
func (g *OwnershipGuard) IsSelf(targetUserID, callerUserID string) bool {
	return targetUserID != "" && targetUserID == callerUserID
}
