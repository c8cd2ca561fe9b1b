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

// A posting that loses the version race is retried from the top: re-read the
// account, recompute the balance, CAS again. The bound is internal and never
// exposed to callers.
const maxPostingAttempts = 3

// TransactionService is the transaction processor: the only entry point that
// appends a ledger entry and mutates the corresponding account balance, as
// one atomic unit under optimistic concurrency.
type TransactionService struct {
	ids      *idgen.Generator
	accounts AccountStore
	ledger   LedgerStore
	guard    *OwnershipGuard
	cache    AccountViewCache
	events   EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

func NewTransactionService(
	ids *idgen.Generator,
	accounts AccountStore,
	ledger LedgerStore,
	guard *OwnershipGuard,
	cache AccountViewCache,
	publisher EventPublisher,
	log *zap.Logger,
) *TransactionService {
	return &TransactionService{
		ids:      ids,
		accounts: accounts,
		ledger:   ledger,
		guard:    guard,
		cache:    cache,
		events:   publisher,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateTransactionParams is the validated boundary input for a posting.
type CreateTransactionParams struct {
	Amount    decimal.Decimal
	Currency  string
	Type      string
	Reference string
}

// CreateTransaction validates, applies and persists a deposit or withdrawal
// against the account. The balance mutation and the ledger insert commit
// together; a concurrent modification restarts the read-modify-write.
func (s *TransactionService) CreateTransaction(ctx context.Context, accountNumber string, params CreateTransactionParams, callerUserID string) (*models.Transaction, error) {
	if err := s.authorize(ctx, accountNumber, callerUserID); err != nil {
		return nil, err
	}

	// The account is resolved before the posting itself is validated; an
	// unknown account is NotFound no matter what the request carries.
	account, err := s.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	txnType, err := models.ParseTransactionType(params.Type)
	if err != nil {
		return nil, err
	}
	if params.Currency != models.Currency {
		return nil, apperr.InvalidArgument("currency must be %s", models.Currency)
	}

	var txn *models.Transaction
	for attempt := 1; ; attempt++ {
		if attempt > 1 {
			account, err = s.accounts.GetByAccountNumber(ctx, accountNumber)
			if err != nil {
				return nil, err
			}
		}

		switch txnType {
		case models.TransactionDeposit:
			err = account.Deposit(params.Amount)
		case models.TransactionWithdrawal:
			err = account.Withdraw(params.Amount)
		}
		if err != nil {
			return nil, err
		}

		now := s.now()
		account.UpdatedAt = now
		txn = &models.Transaction{
			ID:            s.ids.NewTransactionID(),
			AccountNumber: account.AccountNumber,
			UserID:        account.UserID,
			Amount:        params.Amount,
			Currency:      params.Currency,
			Type:          txnType,
			Reference:     params.Reference,
			CreatedAt:     now,
		}

		err = s.ledger.ApplyPosting(ctx, account, txn)
		if err == nil {
			break
		}
		if !apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		if attempt >= maxPostingAttempts {
			return nil, err
		}
		s.log.Debug("posting lost version race, retrying",
			zap.String("accountNumber", accountNumber), zap.Int("attempt", attempt))
	}

	s.cachePut(ctx, account)
	s.publish(ctx, events.LedgerEventsStream, events.TransactionPosted, events.TransactionPostedEvent{
		TransactionID: txn.ID,
		AccountNumber: txn.AccountNumber,
		UserID:        txn.UserID,
		Amount:        txn.Amount.StringFixed(2),
		Type:          string(txn.Type),
		Currency:      txn.Currency,
		NewBalance:    account.Balance.StringFixed(2),
	})
	s.log.Info("transaction created",
		zap.String("transactionId", txn.ID),
		zap.String("accountNumber", accountNumber),
		zap.String("type", string(txn.Type)),
	)
	return txn, nil
}

// ListTransactions returns the account's ledger newest-first; an account with
// no transactions yields an empty slice.
func (s *TransactionService) ListTransactions(ctx context.Context, accountNumber, callerUserID string) ([]models.Transaction, error) {
	if err := s.authorize(ctx, accountNumber, callerUserID); err != nil {
		return nil, err
	}
	if _, err := s.accounts.GetByAccountNumber(ctx, accountNumber); err != nil {
		return nil, err
	}
	return s.ledger.ListByAccountNumber(ctx, accountNumber)
}

// GetTransaction returns one ledger entry. A transaction id that exists under
// a different account is NotFound, never Forbidden, so its existence
// elsewhere is not confirmed.
func (s *TransactionService) GetTransaction(ctx context.Context, accountNumber, transactionID, callerUserID string) (*models.Transaction, error) {
	if err := s.authorize(ctx, accountNumber, callerUserID); err != nil {
		return nil, err
	}
	if _, err := s.accounts.GetByAccountNumber(ctx, accountNumber); err != nil {
		return nil, err
	}
	return s.ledger.GetByIDAndAccountNumber(ctx, transactionID, accountNumber)
}

func (s *TransactionService) authorize(ctx context.Context, accountNumber, callerUserID string) error {
	owner, err := s.guard.IsAccountOwner(ctx, accountNumber, callerUserID)
	if err != nil {
		return err
	}
	if !owner {
		return apperr.Forbidden("you are not authorized to access this account")
	}
	return nil
}

func (s *TransactionService) cachePut(ctx context.Context, account *models.BankAccount) {
	if s.cache != nil {
		s.cache.Put(ctx, account)
	}
}

func (s *TransactionService) publish(ctx context.Context, stream, eventType string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, stream, eventType, data); err != nil {
		s.log.Warn("failed to publish event",
			zap.String("stream", stream), zap.String("type", eventType), zap.Error(err))
	}
}
