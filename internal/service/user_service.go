package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eaglebank/eagle-bank/internal/apperr"
	"github.com/eaglebank/eagle-bank/internal/events"
	"github.com/eaglebank/eagle-bank/internal/idgen"
	"github.com/eaglebank/eagle-bank/internal/models"
)

// UserService manages user identity records. User-scoped reads and writes
// are guarded by IsSelf; a user owning any account cannot be deleted.
type UserService struct {
	ids    *idgen.Generator
	users  UserStore
	guard  *OwnershipGuard
	events EventPublisher
	log    *zap.Logger
	now    func() time.Time

	// accountCount reports how many accounts a user owns, for the
	// delete-user rule.
	accountCount func(ctx context.Context, userID string) (int, error)
}

func NewUserService(
	ids *idgen.Generator,
	users UserStore,
	accounts AccountStore,
	guard *OwnershipGuard,
	publisher EventPublisher,
	log *zap.Logger,
) *UserService {
	return &UserService{
		ids:          ids,
		users:        users,
		guard:        guard,
		events:       publisher,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
		accountCount: accounts.CountByUserID,
	}
}

// CreateUserParams carries the validated registration input.
type CreateUserParams struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
	Address     models.Address
}

// CreateUser registers a new user. A duplicate email is a Conflict.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error) {
	passwordHash, err := hashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		ID:           s.ids.NewUserID(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
		PhoneNumber:  params.PhoneNumber,
		Address:      params.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserEventsStream, events.UserCreated, events.UserCreatedEvent{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	s.log.Info("user created", zap.String("userId", user.ID))
	return user, nil
}

// GetUser returns the user's own record.
func (s *UserService) GetUser(ctx context.Context, targetUserID, callerUserID string) (*models.User, error) {
	if !s.guard.IsSelf(targetUserID, callerUserID) {
		return nil, apperr.Forbidden("you are not allowed to access this user")
	}
	return s.users.GetByID(ctx, targetUserID)
}

// UpdateUserParams carries PATCH semantics: nil fields are left untouched.
type UpdateUserParams struct {
	Name        *string
	PhoneNumber *string
	Address     *models.Address
}

// UpdateUser applies name/phone/address changes to the caller's own record.
func (s *UserService) UpdateUser(ctx context.Context, targetUserID, callerUserID string, params UpdateUserParams) (*models.User, error) {
	if !s.guard.IsSelf(targetUserID, callerUserID) {
		return nil, apperr.Forbidden("you are not allowed to update this user")
	}
	user, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil && *params.Name != "" {
		user.Name = *params.Name
	}
	if params.PhoneNumber != nil && *params.PhoneNumber != "" {
		user.PhoneNumber = *params.PhoneNumber
	}
	if params.Address != nil {
		user.Address = *params.Address
	}

	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user updated", zap.String("userId", targetUserID))
	return user, nil
}

// DeleteUser removes the caller's own record, refused while any account is
// still owned.
func (s *UserService) DeleteUser(ctx context.Context, targetUserID, callerUserID string) error {
	if !s.guard.IsSelf(targetUserID, callerUserID) {
		return apperr.Forbidden("you are not allowed to delete this user")
	}
	if _, err := s.users.GetByID(ctx, targetUserID); err != nil {
		return err
	}

	count, err := s.accountCount(ctx, targetUserID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("cannot delete user with existing bank accounts")
	}

	if err := s.users.Delete(ctx, targetUserID); err != nil {
		return err
	}
	s.publish(ctx, events.UserEventsStream, events.UserDeleted, events.UserDeletedEvent{
		UserID: targetUserID,
	})
	s.log.Info("user deleted", zap.String("userId", targetUserID))
	return nil
}

func (s *UserService) publish(ctx context.Context, stream, eventType string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, stream, eventType, data); err != nil {
		s.log.Warn("failed to publish event",
			zap.String("stream", stream), zap.String("type", eventType), zap.Error(err))
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
