package cache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eaglebank/eagle-bank/internal/models"
)

const accountViewKeyPrefix = "account:view:"

// AccountCache holds the account read projection. Refreshed after every
// committed mutation, invalidated on delete.
type AccountCache struct {
	cache *ViewCache[models.BankAccount]
}

func NewAccountCache(client *goredis.Client, ttl time.Duration, log *zap.Logger) *AccountCache {
	return &AccountCache{cache: NewViewCache[models.BankAccount](client, ttl, log)}
}

func (c *AccountCache) Get(ctx context.Context, accountNumber string) (*models.BankAccount, bool) {
	return c.cache.Get(ctx, accountViewKeyPrefix+accountNumber)
}

func (c *AccountCache) Put(ctx context.Context, account *models.BankAccount) {
	c.cache.Set(ctx, accountViewKeyPrefix+account.AccountNumber, account)
}

func (c *AccountCache) Invalidate(ctx context.Context, accountNumber string) {
	c.cache.Delete(ctx, accountViewKeyPrefix+accountNumber)
}
