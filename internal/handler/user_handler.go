package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaglebank/eagle-bank/internal/middleware"
	"github.com/eaglebank/eagle-bank/internal/models"
	"github.com/eaglebank/eagle-bank/internal/service"
)

// UserOperations defines the engine operations used by UserHandler.
type UserOperations interface {
	CreateUser(ctx context.Context, params service.CreateUserParams) (*models.User, error)
	GetUser(ctx context.Context, targetUserID, callerUserID string) (*models.User, error)
	UpdateUser(ctx context.Context, targetUserID, callerUserID string, params service.UpdateUserParams) (*models.User, error)
	DeleteUser(ctx context.Context, targetUserID, callerUserID string) error
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	users UserOperations
}

func NewUserHandler(users UserOperations) *UserHandler {
	return &UserHandler{users: users}
}

type CreateUserRequest struct {
	Name        string         `json:"name" validate:"required"`
	Email       string         `json:"email" validate:"required,email"`
	Password    string         `json:"password" validate:"required,min=8"`
	PhoneNumber string         `json:"phoneNumber" validate:"required,min=10,max=20"`
	Address     models.Address `json:"address" validate:"required"`
}

type UpdateUserRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1"`
	PhoneNumber *string         `json:"phoneNumber" validate:"omitempty,min=10,max=20"`
	Address     *models.Address `json:"address"`
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), service.CreateUserParams{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	targetUserID := c.Param("userId")
	callerUserID, _ := middleware.GetUserID(c)

	user, err := h.users.GetUser(c.Request.Context(), targetUserID, callerUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	targetUserID := c.Param("userId")
	callerUserID, _ := middleware.GetUserID(c)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), targetUserID, callerUserID, service.UpdateUserParams{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	targetUserID := c.Param("userId")
	callerUserID, _ := middleware.GetUserID(c)

	if err := h.users.DeleteUser(c.Request.Context(), targetUserID, callerUserID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
