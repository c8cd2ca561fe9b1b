package handler

import (
	"encoding/json"
	"time"

	"github.com/eaglebank/eagle-bank/internal/models"
)

// External representations. Monetary fields serialize as JSON numbers with
// exactly two fraction digits.

type AccountResponse struct {
	AccountNumber    string      `json:"accountNumber"`
	SortCode         string      `json:"sortCode"`
	Name             string      `json:"name"`
	AccountType      string      `json:"accountType"`
	Balance          json.Number `json:"balance"`
	Currency         string      `json:"currency"`
	CreatedTimestamp time.Time   `json:"createdTimestamp"`
	UpdatedTimestamp time.Time   `json:"updatedTimestamp"`
}

func accountToResponse(a *models.BankAccount) AccountResponse {
	return AccountResponse{
		AccountNumber:    a.AccountNumber,
		SortCode:         a.SortCode,
		Name:             a.Name,
		AccountType:      string(a.AccountType),
		Balance:          json.Number(a.Balance.StringFixed(2)),
		Currency:         a.Currency,
		CreatedTimestamp: a.CreatedAt,
		UpdatedTimestamp: a.UpdatedAt,
	}
}

type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

type TransactionResponse struct {
	ID               string      `json:"id"`
	Amount           json.Number `json:"amount"`
	Currency         string      `json:"currency"`
	Type             string      `json:"type"`
	Reference        string      `json:"reference,omitempty"`
	UserID           string      `json:"userId"`
	CreatedTimestamp time.Time   `json:"createdTimestamp"`
}

func transactionToResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:               t.ID,
		Amount:           json.Number(t.Amount.StringFixed(2)),
		Currency:         t.Currency,
		Type:             string(t.Type),
		Reference:        t.Reference,
		UserID:           t.UserID,
		CreatedTimestamp: t.CreatedAt,
	}
}

type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

type UserResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	PhoneNumber      string         `json:"phoneNumber"`
	Address          models.Address `json:"address"`
	CreatedTimestamp time.Time      `json:"createdTimestamp"`
	UpdatedTimestamp time.Time      `json:"updatedTimestamp"`
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		PhoneNumber:      u.PhoneNumber,
		Address:          u.Address,
		CreatedTimestamp: u.CreatedAt,
		UpdatedTimestamp: u.UpdatedAt,
	}
}
