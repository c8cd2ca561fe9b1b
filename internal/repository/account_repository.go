package repository

import (
	"context"
	"database/sql"

	"github.com/eaglebank/eagle-bank/internal/apperr"
	"github.com/eaglebank/eagle-bank/internal/models"
)

// AccountRepository persists bank accounts in PostgreSQL. All writes against
// an existing row are compare-and-swapped on (account_number, version);
// zero rows affected on a versioned write surfaces as a Conflict.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `account_number, user_id, sort_code, name, account_type, balance, currency, version, created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, account *models.BankAccount) error {
	query := `
		INSERT INTO bank_accounts (account_number, user_id, sort_code, name, account_type, balance, currency, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.AccountNumber, account.UserID, account.SortCode, account.Name,
		account.AccountType, account.Balance, account.Currency, account.Version,
		account.CreatedAt, account.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("account number already exists: %s", account.AccountNumber)
	}
	if err != nil {
		return storeError("create account", err)
	}
	return nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*models.BankAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM bank_accounts
		WHERE account_number = $1 AND deleted_at IS NULL
	`
	var account models.BankAccount
	err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&account.AccountNumber, &account.UserID, &account.SortCode, &account.Name,
		&account.AccountType, &account.Balance, &account.Currency, &account.Version,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("bank account not found with account number: %s", accountNumber)
	}
	if err != nil {
		return nil, storeError("get account", err)
	}
	return &account, nil
}

func (r *AccountRepository) ListByUserID(ctx context.Context, userID string) ([]models.BankAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM bank_accounts
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeError("list accounts", err)
	}
	defer rows.Close()

	var accounts []models.BankAccount
	for rows.Next() {
		var account models.BankAccount
		if err := rows.Scan(
			&account.AccountNumber, &account.UserID, &account.SortCode, &account.Name,
			&account.AccountType, &account.Balance, &account.Currency, &account.Version,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, storeError("scan account", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Update persists name/type changes under optimistic concurrency. On success
// the in-memory version counter is bumped to match the row.
func (r *AccountRepository) Update(ctx context.Context, account *models.BankAccount) error {
	query := `
		UPDATE bank_accounts
		SET name = $3, account_type = $4, updated_at = $5, version = version + 1
		WHERE account_number = $1 AND version = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		account.AccountNumber, account.Version,
		account.Name, account.AccountType, account.UpdatedAt,
	)
	if err != nil {
		return storeError("update account", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storeError("check rows affected", err)
	}
	if rows == 0 {
		return r.staleWriteError(ctx, account.AccountNumber)
	}
	account.Version++
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, accountNumber string) error {
	query := `UPDATE bank_accounts SET deleted_at = NOW() WHERE account_number = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, accountNumber)
	if err != nil {
		return storeError("delete account", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storeError("check rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound("bank account not found with account number: %s", accountNumber)
	}
	return nil
}

// ExistsByAccountNumber reports whether the number is taken, including by
// soft-deleted accounts; account numbers are never reused.
func (r *AccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bank_accounts WHERE account_number = $1)`,
		accountNumber,
	).Scan(&exists)
	if err != nil {
		return false, storeError("check account number", err)
	}
	return exists, nil
}

func (r *AccountRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bank_accounts WHERE user_id = $1 AND deleted_at IS NULL`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, storeError("count accounts", err)
	}
	return count, nil
}

// staleWriteError distinguishes a version mismatch (Conflict, retryable) from
// a vanished row (NotFound) after a zero-rows-affected versioned write.
func (r *AccountRepository) staleWriteError(ctx context.Context, accountNumber string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bank_accounts WHERE account_number = $1 AND deleted_at IS NULL)`,
		accountNumber,
	).Scan(&exists)
	if err != nil {
		return storeError("check account after stale write", err)
	}
	if exists {
		return apperr.Conflict("account %s was modified concurrently", accountNumber)
	}
	return apperr.NotFound("bank account not found with account number: %s", accountNumber)
}
