package service

import (
	"context"
	"sort"
	"sync"

	"github.com/eaglebank/eagle-bank/internal/apperr"
	"github.com/eaglebank/eagle-bank/internal/models"
)

// fakeBank is an in-memory store implementing UserStore, AccountStore and
// LedgerStore with the same compare-and-swap discipline as the PostgreSQL
// repositories, so concurrency behavior is exercised for real.
type fakeBank struct {
	mu       sync.Mutex
	users    map[string]models.User
	accounts map[string]models.BankAccount
	txns     []models.Transaction
	seq      int64

	// collideFirst makes ExistsByAccountNumber report a collision for the
	// first N checks, to exercise the generation retry loop.
	collideFirst int

	// conflictFirst makes ApplyPosting fail with Conflict for the first N
	// calls regardless of version, to exercise the posting retry loop.
	conflictFirst int
}

func newFakeBank() *fakeBank {
	return &fakeBank{
		users:    make(map[string]models.User),
		accounts: make(map[string]models.BankAccount),
	}
}

// ---- UserStore ----

type fakeUserStore struct{ *fakeBank }

func (f fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperr.Conflict("email already exists: %s", user.Email)
		}
	}
	f.users[user.ID] = *user
	return nil
}

func (f fakeUserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, apperr.NotFound("user not found with id: %s", userID)
	}
	return &u, nil
}

func (f fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, apperr.NotFound("user not found with email: %s", email)
}

func (f fakeUserStore) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return apperr.NotFound("user not found with id: %s", user.ID)
	}
	f.users[user.ID] = *user
	return nil
}

func (f fakeUserStore) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return apperr.NotFound("user not found with id: %s", userID)
	}
	delete(f.users, userID)
	return nil
}

// ---- AccountStore ----

type fakeAccountStore struct{ *fakeBank }

func (f fakeAccountStore) Create(ctx context.Context, account *models.BankAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.AccountNumber]; ok {
		return apperr.Conflict("account number already exists: %s", account.AccountNumber)
	}
	f.accounts[account.AccountNumber] = *account
	return nil
}

func (f fakeAccountStore) GetByAccountNumber(ctx context.Context, accountNumber string) (*models.BankAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountNumber]
	if !ok {
		return nil, apperr.NotFound("bank account not found with account number: %s", accountNumber)
	}
	return &a, nil
}

func (f fakeAccountStore) ListByUserID(ctx context.Context, userID string) ([]models.BankAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BankAccount
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeAccountStore) Update(ctx context.Context, account *models.BankAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.accounts[account.AccountNumber]
	if !ok {
		return apperr.NotFound("bank account not found with account number: %s", account.AccountNumber)
	}
	if cur.Version != account.Version {
		return apperr.Conflict("account %s was modified concurrently", account.AccountNumber)
	}
	account.Version++
	f.accounts[account.AccountNumber] = *account
	return nil
}

func (f fakeAccountStore) Delete(ctx context.Context, accountNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[accountNumber]; !ok {
		return apperr.NotFound("bank account not found with account number: %s", accountNumber)
	}
	delete(f.accounts, accountNumber)
	return nil
}

func (f fakeAccountStore) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.collideFirst > 0 {
		f.collideFirst--
		return true, nil
	}
	_, ok := f.accounts[accountNumber]
	return ok, nil
}

func (f fakeAccountStore) CountByUserID(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.accounts {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

// ---- LedgerStore ----

type fakeLedgerStore struct{ *fakeBank }

func (f fakeLedgerStore) ApplyPosting(ctx context.Context, account *models.BankAccount, txn *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictFirst > 0 {
		f.conflictFirst--
		return apperr.Conflict("account %s was modified concurrently", account.AccountNumber)
	}
	cur, ok := f.accounts[account.AccountNumber]
	if !ok {
		return apperr.Conflict("account %s was modified concurrently", account.AccountNumber)
	}
	if cur.Version != account.Version {
		return apperr.Conflict("account %s was modified concurrently", account.AccountNumber)
	}
	cur.Balance = account.Balance
	cur.UpdatedAt = account.UpdatedAt
	cur.Version++
	f.accounts[account.AccountNumber] = cur

	f.seq++
	txn.Seq = f.seq
	f.txns = append(f.txns, *txn)
	account.Version++
	return nil
}

func (f fakeLedgerStore) ListByAccountNumber(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, t := range f.txns {
		if t.AccountNumber == accountNumber {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Seq > out[j].Seq
	})
	return out, nil
}

func (f fakeLedgerStore) GetByIDAndAccountNumber(ctx context.Context, transactionID, accountNumber string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.txns {
		if t.ID == transactionID && t.AccountNumber == accountNumber {
			txn := t
			return &txn, nil
		}
	}
	return nil, apperr.NotFound("transaction not found with id: %s for account: %s", transactionID, accountNumber)
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturePublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}
