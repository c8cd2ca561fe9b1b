package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eaglebank/eagle-bank/internal/apperr"
	"github.com/eaglebank/eagle-bank/internal/idgen"
	"github.com/eaglebank/eagle-bank/internal/models"
)

func newTransactionService(bank *fakeBank) *TransactionService {
	accounts := fakeAccountStore{bank}
	return NewTransactionService(
		newTestIDs(),
		accounts,
		fakeLedgerStore{bank},
		NewOwnershipGuard(accounts),
		nil,
		&capturePublisher{},
		zap.NewNop(),
	)
}

func deposit(amount string) CreateTransactionParams {
	return CreateTransactionParams{
		Amount:   decimal.RequireFromString(amount),
		Currency: "GBP",
		Type:     "deposit",
	}
}

func withdrawal(amount string) CreateTransactionParams {
	return CreateTransactionParams{
		Amount:   decimal.RequireFromString(amount),
		Currency: "GBP",
		Type:     "withdrawal",
	}
}

func accountBalance(t *testing.T, bank *fakeBank, accountNumber string) string {
	t.Helper()
	account, ok := bank.accounts[accountNumber]
	require.True(t, ok)
	return account.Balance.StringFixed(2)
}

func TestCreateTransactionDeposit(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01234567", "usr-alice", "0.00")
	svc := newTransactionService(bank)

	params := deposit("100.50")
	params.Reference = "Salary payment"
	txn, err := svc.CreateTransaction(context.Background(), "01234567", params, "usr-alice")
	require.NoError(t, err)

	assert.Regexp(t, `^tan-[0-9a-f]{12}$`, txn.ID)
	assert.Equal(t, models.TransactionDeposit, txn.Type)
	assert.Equal(t, "100.50", txn.Amount.StringFixed(2))
	assert.Equal(t, "Salary payment", txn.Reference)
	assert.Equal(t, "usr-alice", txn.UserID)
	assert.Equal(t, "100.50", accountBalance(t, bank, "01234567"))
}

func TestCreateTransactionWithdrawal(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01234567", "usr-alice", "200.00")
	svc := newTransactionService(bank)

	txn, err := svc.CreateTransaction(context.Background(), "01234567", withdrawal("75.25"), "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionWithdrawal, txn.Type)
	assert.Equal(t, "124.75", accountBalance(t, bank, "01234567"))
}

func TestCreateTransactionInsufficientFunds(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01234567", "usr-alice", "0.00")
	svc := newTransactionService(bank)

	_, err := svc.CreateTransaction(context.Background(), "01234567", withdrawal("50.00"), "usr-alice")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientFunds))

	var ife *apperr.InsufficientFundsError
	require.ErrorAs(t, err, &ife)
	assert.Equal(t, "0.00", ife.Available.StringFixed(2))
	assert.Equal(t, "50.00", ife.Requested.StringFixed(2))

	// Balance unchanged and nothing appended to the ledger.
	assert.Equal(t, "0.00", accountBalance(t, bank, "01234567"))
	assert.Empty(t, bank.txns)
}

func TestCreateTransactionRejectsInvalidInput(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01234567", "usr-alice", "100.00")
	svc := newTransactionService(bank)

	tests := []struct {
		name   string
		params CreateTransactionParams
		kind   apperr.Kind
	}{
		{"unknown type", CreateTransactionParams{Amount: decimal.RequireFromString("10.00"), Currency: "GBP", Type: "transfer"}, apperr.KindInvalidArgument},
		{"wrong currency", CreateTransactionParams{Amount: decimal.RequireFromString("10.00"), Currency: "USD", Type: "deposit"}, apperr.KindInvalidArgument},
		{"zero amount", deposit("0"), apperr.KindInvalidArgument},
		{"negative amount", deposit("-5.00"), apperr.KindInvalidArgument},
		{"negative withdrawal", withdrawal("-5.00"), apperr.KindInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(context.Background(), "01234567", tt.params, "usr-alice")
			assert.True(t, apperr.IsKind(err, tt.kind))
		})
	}
	assert.Equal(t, "100.00", accountBalance(t, bank, "01234567"))
	assert.Empty(t, bank.txns)
}

func TestCreateTransactionForbiddenForNonOwner(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01234567", "usr-alice", "100.00")
	svc := newTransactionService(bank)

	_, err := svc.CreateTransaction(context.Background(), "01234567", deposit("10.00"), "usr-mallory")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	assert.Equal(t, "100.00", accountBalance(t, bank, "01234567"))
	assert.Empty(t, bank.txns)
}

func TestCreateTransactionAccountNotFound(t *testing.T) {
	bank := newFakeBank()
	svc := newTransactionService(bank)

	_, err := svc.CreateTransaction(context.Background(), "01999999", deposit("10.00"), "usr-alice")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateTransactionMissingAccountWinsOverBadInput(t *testing.T) {
	bank := newFakeBank()
	svc := newTransactionService(bank)

	// The account lookup happens before the posting is validated, so an
	// unknown account is NotFound even when the request itself is bad.
	tests := []struct {
		name   string
		params CreateTransactionParams
	}{
		{"unknown type", CreateTransactionParams{Amount: decimal.RequireFromString("10.00"), Currency: "GBP", Type: "transfer"}},
		{"wrong currency", CreateTransactionParams{Amount: decimal.RequireFromString("10.00"), Currency: "USD", Type: "deposit"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(context.Background(), "01999999", tt.params, "usr-alice")
			assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
		})
	}
}

func TestCreateTransactionRetriesVersionConflicts(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01234567", "usr-alice", "0.00")
	bank.conflictFirst = 2
	svc := newTransactionService(bank)

	_, err := svc.CreateTransaction(context.Background(), "01234567", deposit("10.00"), "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, "10.00", accountBalance(t, bank, "01234567"))
}

func TestCreateTransactionConflictRetriesExhausted(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01234567", "usr-alice", "0.00")
	bank.conflictFirst = maxPostingAttempts
	svc := newTransactionService(bank)

	_, err := svc.CreateTransaction(context.Background(), "01234567", deposit("10.00"), "usr-alice")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Equal(t, "0.00", accountBalance(t, bank, "01234567"))
	assert.Empty(t, bank.txns)
}

func TestDepositThenWithdrawRestoresBalance(t *testing.T) {
	for _, amount := range []string{"0.01", "1.00", "99.99", "10000.00"} {
		t.Run(amount, func(t *testing.T) {
			bank := newFakeBank()
			seedUser(bank, "usr-alice")
			seedAccount(bank, "01234567", "usr-alice", "0.00")
			svc := newTransactionService(bank)

			_, err := svc.CreateTransaction(context.Background(), "01234567", deposit(amount), "usr-alice")
			require.NoError(t, err)
			_, err = svc.CreateTransaction(context.Background(), "01234567", withdrawal(amount), "usr-alice")
			require.NoError(t, err)

			assert.Equal(t, "0.00", accountBalance(t, bank, "01234567"))
		})
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01234567", "usr-alice", "0.00")
	svc := newTransactionService(bank)

	_, err := svc.CreateTransaction(context.Background(), "01234567", deposit("100.00"), "usr-alice")
	require.NoError(t, err)
	_, err = svc.CreateTransaction(context.Background(), "01234567", deposit("50.00"), "usr-alice")
	require.NoError(t, err)
	_, err = svc.CreateTransaction(context.Background(), "01234567", withdrawal("30.00"), "usr-alice")
	require.NoError(t, err)

	assert.Equal(t, "120.00", accountBalance(t, bank, "01234567"))

	txns, err := svc.ListTransactions(context.Background(), "01234567", "usr-alice")
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, "30.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, models.TransactionWithdrawal, txns[0].Type)
	assert.Equal(t, "50.00", txns[1].Amount.StringFixed(2))
	assert.Equal(t, "100.00", txns[2].Amount.StringFixed(2))

	// Stable order: creation time descending, insertion sequence breaking ties.
	for i := 1; i < len(txns); i++ {
		if txns[i-1].CreatedAt.Equal(txns[i].CreatedAt) {
			assert.Greater(t, txns[i-1].Seq, txns[i].Seq)
		} else {
			assert.True(t, txns[i-1].CreatedAt.After(txns[i].CreatedAt))
		}
	}
}

func TestListTransactionsEmptyAccount(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01234567", "usr-alice", "0.00")
	svc := newTransactionService(bank)

	txns, err := svc.ListTransactions(context.Background(), "01234567", "usr-alice")
	require.NoError(t, err)
	assert.Empty(t, txns)

	_, err = svc.ListTransactions(context.Background(), "01999999", "usr-alice")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGetTransactionWrongAccountIsNotFound(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01111111", "usr-alice", "0.00")
	seedAccount(bank, "01222222", "usr-alice", "0.00")
	svc := newTransactionService(bank)

	txn, err := svc.CreateTransaction(context.Background(), "01111111", deposit("10.00"), "usr-alice")
	require.NoError(t, err)

	got, err := svc.GetTransaction(context.Background(), "01111111", txn.ID, "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)

	// Valid id under a different account: NotFound, never Forbidden, so the
	// id's existence elsewhere is not confirmed.
	_, err = svc.GetTransaction(context.Background(), "01222222", txn.ID, "usr-alice")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestConcurrentDepositsLoseNoUpdates(t *testing.T) {
	bank := newFakeBank()
	seedUser(bank, "usr-alice")
	seedAccount(bank, "01234567", "usr-alice", "0.00")

	// Production entropy source here: the deterministic test source is not
	// safe for concurrent readers.
	accounts := fakeAccountStore{bank}
	svc := NewTransactionService(
		idgen.New(),
		accounts,
		fakeLedgerStore{bank},
		NewOwnershipGuard(accounts),
		nil,
		&capturePublisher{},
		zap.NewNop(),
	)

	const workers = 32
	amount := decimal.RequireFromString("2.50")

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker retries until its posting commits, as callers
			// are expected to on Conflict.
			for {
				_, err := svc.CreateTransaction(context.Background(), "01234567", CreateTransactionParams{
					Amount:   amount,
					Currency: "GBP",
					Type:     "deposit",
				}, "usr-alice")
				if err == nil {
					return
				}
				if !apperr.IsKind(err, apperr.KindConflict) {
					errs <- fmt.Errorf("unexpected error: %w", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	want := amount.Mul(decimal.NewFromInt(workers))
	assert.Equal(t, want.StringFixed(2), accountBalance(t, bank, "01234567"))
	assert.Len(t, bank.txns, workers)
}
