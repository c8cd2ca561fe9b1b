package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eaglebank/eagle-bank/internal/apperr"
	"github.com/eaglebank/eagle-bank/internal/events"
	"github.com/eaglebank/eagle-bank/internal/idgen"
	"github.com/eaglebank/eagle-bank/internal/models"
)

// Account number generation checks the store for collisions; the space is
// only 900k values, so the bound is a capacity guard, not a liveness one.
const maxAccountNumberAttempts = 100

// AccountService is the account balance engine: it creates accounts and
// applies every administrative state transition, preserving balance >= 0.
// Balance-affecting postings go through TransactionService.
type AccountService struct {
	ids      *idgen.Generator
	accounts AccountStore
	users    UserStore
	guard    *OwnershipGuard
	cache    AccountViewCache
	events   EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

func NewAccountService(
	ids *idgen.Generator,
	accounts AccountStore,
	users UserStore,
	guard *OwnershipGuard,
	cache AccountViewCache,
	publisher EventPublisher,
	log *zap.Logger,
) *AccountService {
	return &AccountService{
		ids:      ids,
		accounts: accounts,
		users:    users,
		guard:    guard,
		cache:    cache,
		events:   publisher,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateAccount opens an account for an existing user with a zero balance,
// the fixed sort code and currency, and a freshly generated account number.
func (s *AccountService) CreateAccount(ctx context.Context, ownerID, name, accountType string) (*models.BankAccount, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	parsedType, err := models.ParseAccountType(accountType)
	if err != nil {
		return nil, err
	}

	accountNumber, err := s.uniqueAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &models.BankAccount{
		AccountNumber: accountNumber,
		UserID:        ownerID,
		SortCode:      models.SortCode,
		AccountType:   parsedType,
		Balance:       decimal.Zero.Round(2),
		Currency:      models.Currency,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := account.Rename(name); err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.cachePut(ctx, account)
	s.publish(ctx, events.AccountEventsStream, events.AccountCreated, events.AccountCreatedEvent{
		AccountNumber: account.AccountNumber,
		UserID:        account.UserID,
		Name:          account.Name,
		AccountType:   string(account.AccountType),
	})
	s.log.Info("bank account created",
		zap.String("accountNumber", account.AccountNumber),
		zap.String("userId", ownerID),
	)
	return account, nil
}

// ListAccounts returns the caller's accounts.
func (s *AccountService) ListAccounts(ctx context.Context, ownerID string) ([]models.BankAccount, error) {
	return s.accounts.ListByUserID(ctx, ownerID)
}

// GetAccount returns the account after the ownership check, serving the view
// cache when warm.
func (s *AccountService) GetAccount(ctx context.Context, accountNumber, callerUserID string) (*models.BankAccount, error) {
	if err := s.authorize(ctx, accountNumber, callerUserID, "access"); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if account, ok := s.cache.Get(ctx, accountNumber); ok {
			return account, nil
		}
	}
	account, err := s.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	s.cachePut(ctx, account)
	return account, nil
}

// UpdateAccountParams carries PATCH semantics: nil fields are left untouched.
type UpdateAccountParams struct {
	Name        *string
	AccountType *string
}

// UpdateAccount renames and/or retypes the account under optimistic
// concurrency. A stale version surfaces as a retryable Conflict.
func (s *AccountService) UpdateAccount(ctx context.Context, accountNumber, callerUserID string, params UpdateAccountParams) (*models.BankAccount, error) {
	if err := s.authorize(ctx, accountNumber, callerUserID, "update"); err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if err := account.Rename(*params.Name); err != nil {
			return nil, err
		}
	}
	if params.AccountType != nil {
		parsedType, err := models.ParseAccountType(*params.AccountType)
		if err != nil {
			return nil, err
		}
		if err := account.Retype(parsedType); err != nil {
			return nil, err
		}
	}

	account.UpdatedAt = s.now()
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	s.cachePut(ctx, account)
	s.publish(ctx, events.AccountEventsStream, events.AccountUpdated, events.AccountUpdatedEvent{
		AccountNumber: account.AccountNumber,
		UserID:        account.UserID,
		Name:          account.Name,
	})
	s.log.Info("bank account updated", zap.String("accountNumber", accountNumber))
	return account, nil
}

// DeleteAccount removes the account. A non-zero balance does not block
// deletion; the ledger entries remain.
func (s *AccountService) DeleteAccount(ctx context.Context, accountNumber, callerUserID string) error {
	if err := s.authorize(ctx, accountNumber, callerUserID, "delete"); err != nil {
		return err
	}
	account, err := s.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, accountNumber); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, accountNumber)
	}
	s.publish(ctx, events.AccountEventsStream, events.AccountDeleted, events.AccountDeletedEvent{
		AccountNumber: account.AccountNumber,
		UserID:        account.UserID,
	})
	s.log.Info("bank account deleted", zap.String("accountNumber", accountNumber))
	return nil
}

// authorize runs the ownership guard. The guard answers true for an absent
// account; the caller's subsequent lookup reports NotFound in that case.
func (s *AccountService) authorize(ctx context.Context, accountNumber, callerUserID, action string) error {
	owner, err := s.guard.IsAccountOwner(ctx, accountNumber, callerUserID)
	if err != nil {
		return err
	}
	if !owner {
		return apperr.Forbidden("you are not allowed to %s this bank account", action)
	}
	return nil
}

// uniqueAccountNumber draws numbers until one is unused, bounded because the
// number space is small. Exhaustion is a capacity error, distinct from any
// single collision.
func (s *AccountService) uniqueAccountNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAccountNumberAttempts; attempt++ {
		accountNumber := s.ids.NewAccountNumber()
		exists, err := s.accounts.ExistsByAccountNumber(ctx, accountNumber)
		if err != nil {
			return "", err
		}
		if !exists {
			return accountNumber, nil
		}
	}
	return "", apperr.Conflict("unable to generate unique account number")
}

func (s *AccountService) cachePut(ctx context.Context, account *models.BankAccount) {
	if s.cache != nil {
		s.cache.Put(ctx, account)
	}
}

func (s *AccountService) publish(ctx context.Context, stream, eventType string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, stream, eventType, data); err != nil {
		s.log.Warn("failed to publish event",
			zap.String("stream", stream), zap.String("type", eventType), zap.Error(err))
	}
}
