package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaglebank/eagle-bank/internal/middleware"
	"github.com/eaglebank/eagle-bank/internal/models"
	"github.com/eaglebank/eagle-bank/internal/service"
)

// AccountOperations defines the engine operations used by AccountHandler.
type AccountOperations interface {
	CreateAccount(ctx context.Context, ownerID, name, accountType string) (*models.BankAccount, error)
	ListAccounts(ctx context.Context, ownerID string) ([]models.BankAccount, error)
	GetAccount(ctx context.Context, accountNumber, callerUserID string) (*models.BankAccount, error)
	UpdateAccount(ctx context.Context, accountNumber, callerUserID string, params service.UpdateAccountParams) (*models.BankAccount, error)
	DeleteAccount(ctx context.Context, accountNumber, callerUserID string) error
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts AccountOperations
}

func NewAccountHandler(accounts AccountOperations) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type CreateAccountRequest struct {
	Name        string `json:"name" validate:"required"`
	AccountType string `json:"accountType" validate:"required,oneof=personal"`
}

type UpdateAccountRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	AccountType *string `json:"accountType" validate:"omitempty,oneof=personal"`
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), userID, req.Name, req.AccountType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, accountToResponse(account))
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	accounts, err := h.accounts.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := ListAccountsResponse{Accounts: make([]AccountResponse, 0, len(accounts))}
	for i := range accounts {
		resp.Accounts = append(resp.Accounts, accountToResponse(&accounts[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	userID, _ := middleware.GetUserID(c)

	account, err := h.accounts.GetAccount(c.Request.Context(), accountNumber, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountToResponse(account))
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	userID, _ := middleware.GetUserID(c)

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.accounts.UpdateAccount(c.Request.Context(), accountNumber, userID, service.UpdateAccountParams{
		Name:        req.Name,
		AccountType: req.AccountType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountToResponse(account))
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	userID, _ := middleware.GetUserID(c)

	if err := h.accounts.DeleteAccount(c.Request.Context(), accountNumber, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
