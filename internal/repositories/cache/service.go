// Package cache provides the Redis-backed cache service. Everything in it
// is best-effort: a cache miss or a Redis failure is never a reason to
// fail the request that triggered it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"atlasbank/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func accountKey(accountID uint) string {
	return fmt.Sprintf("account:id:%d", accountID)
}

func recentTxKey(accountID uint) string {
	return fmt.Sprintf("account:recent:%d", accountID)
}

// Account snapshot caching

func (s *CacheService) CacheAccount(ctx context.Context, account *models.Account) error {
	if account == nil {
		return errors.New("cannot cache nil account")
	}
	return s.SetWithTTL(ctx, accountKey(account.ID), account, 5*time.Minute)
}

func (s *CacheService) GetAccount(ctx context.Context, accountID uint) (*models.Account, bool) {
	var account models.Account
	found, err := s.Get(ctx, accountKey(accountID), &account)
	if err != nil || !found {
		return nil, false
	}
	return &account, true
}

// Recent-transaction list caching

func (s *CacheService) CacheRecentTransactions(ctx context.Context, accountID uint, txs []models.Transaction) error {
	return s.SetWithTTL(ctx, recentTxKey(accountID), txs, 5*time.Minute)
}

func (s *CacheService) GetRecentTransactions(ctx context.Context, accountID uint) ([]models.Transaction, bool) {
	var txs []models.Transaction
	found, err := s.Get(ctx, recentTxKey(accountID), &txs)
	if err != nil || !found {
		return nil, false
	}
	return txs, true
}

// InvalidateAccount drops every cached view of an account. Called after any
// balance mutation so a cached snapshot never survives its own write.
func (s *CacheService) InvalidateAccount(ctx context.Context, accountID uint) error {
	return s.Delete(ctx, accountKey(accountID), recentTxKey(accountID))
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
