package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/eaglebank/eagle-bank/internal/middleware"
	"github.com/eaglebank/eagle-bank/internal/models"
	"github.com/eaglebank/eagle-bank/internal/service"
)

// TransactionOperations defines the engine operations used by
// TransactionHandler.
type TransactionOperations interface {
	CreateTransaction(ctx context.Context, accountNumber string, params service.CreateTransactionParams, callerUserID string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, accountNumber, callerUserID string) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, accountNumber, transactionID, callerUserID string) (*models.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactions TransactionOperations
}

func NewTransactionHandler(transactions TransactionOperations) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type CreateTransactionRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0,lte=10000"`
	Currency  string  `json:"currency" validate:"required,oneof=GBP"`
	Type      string  `json:"type" validate:"required,oneof=deposit withdrawal"`
	Reference string  `json:"reference" validate:"omitempty,max=255"`
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	userID, _ := middleware.GetUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	amount := decimal.NewFromFloat(req.Amount)
	if !amount.Equal(amount.Round(2)) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Amount must have at most 2 decimal places")
		return
	}

	txn, err := h.transactions.CreateTransaction(c.Request.Context(), accountNumber, service.CreateTransactionParams{
		Amount:    amount,
		Currency:  req.Currency,
		Type:      req.Type,
		Reference: req.Reference,
	}, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transactionToResponse(txn))
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	userID, _ := middleware.GetUserID(c)

	txns, err := h.transactions.ListTransactions(c.Request.Context(), accountNumber, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := ListTransactionsResponse{Transactions: make([]TransactionResponse, 0, len(txns))}
	for i := range txns {
		resp.Transactions = append(resp.Transactions, transactionToResponse(&txns[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	transactionID := c.Param("transactionId")
	userID, _ := middleware.GetUserID(c)

	txn, err := h.transactions.GetTransaction(c.Request.Context(), accountNumber, transactionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactionToResponse(txn))
}
