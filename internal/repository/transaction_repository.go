package repository

import (
	"context"
	"database/sql"

	"github.com/eaglebank/eagle-bank/internal/apperr"
	"github.com/eaglebank/eagle-bank/internal/models"
)

// TransactionRepository persists the append-only ledger. Ledger entries are
// never updated or deleted.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ApplyPosting commits a balance mutation and its ledger entry as one unit:
// the account row is compare-and-swapped on its version, the transaction is
// inserted, and both are committed together or not at all. A version mismatch
// rolls back and returns Conflict so the caller can retry the whole
// read-modify-write.
func (r *TransactionRepository) ApplyPosting(ctx context.Context, account *models.BankAccount, txn *models.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin posting", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE bank_accounts
		SET balance = $3, updated_at = $4, version = version + 1
		WHERE account_number = $1 AND version = $2 AND deleted_at IS NULL
	`, account.AccountNumber, account.Version, account.Balance, account.UpdatedAt)
	if err != nil {
		return storeError("update balance", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storeError("check rows affected", err)
	}
	if rows == 0 {
		return apperr.Conflict("account %s was modified concurrently", account.AccountNumber)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO transactions (id, account_number, user_id, amount, currency, type, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq
	`,
		txn.ID, txn.AccountNumber, txn.UserID, txn.Amount, txn.Currency,
		txn.Type, nullString(txn.Reference), txn.CreatedAt,
	).Scan(&txn.Seq)
	if err != nil {
		return storeError("create transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return storeError("commit posting", err)
	}
	account.Version++
	return nil
}

const transactionColumns = `id, account_number, user_id, amount, currency, type, reference, seq, created_at`

// ListByAccountNumber returns the ledger newest-first; same-instant entries
// are tie-broken by insertion sequence, so the order is deterministic for a
// given store state.
func (r *TransactionRepository) ListByAccountNumber(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_number = $1
		ORDER BY created_at DESC, seq DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, storeError("list transactions", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}
	return txns, rows.Err()
}

func (r *TransactionRepository) GetByIDAndAccountNumber(ctx context.Context, transactionID, accountNumber string) (*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1 AND account_number = $2
	`
	row := r.db.QueryRowContext(ctx, query, transactionID, accountNumber)
	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("transaction not found with id: %s for account: %s", transactionID, accountNumber)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var txn models.Transaction
	var reference sql.NullString
	err := row.Scan(
		&txn.ID, &txn.AccountNumber, &txn.UserID, &txn.Amount, &txn.Currency,
		&txn.Type, &reference, &txn.Seq, &txn.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, storeError("scan transaction", err)
	}
	txn.Reference = reference.String
	return &txn, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
