package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bitfaucet/faucet/internal/models"
	"github.com/bitfaucet/faucet/pkg/logger"
)

const pingTimeout = 5 * time.Second

type RedisStore struct {
	logger *logger.Logger

	client     *redis.Client
	earnTTL    time.Duration
	balanceTTL time.Duration
}

// NewRedisStore connects to redis and returns the store. The earn record and
// balance retentions are fixed at construction time.
func NewRedisStore(addr, password string, db int, earnTTL, balanceTTL time.Duration, logger *logger.Logger) (models.Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	logger.Info("Successfully connected to redis at ", addr)

	return &RedisStore{
		logger:     logger,
		client:     client,
		earnTTL:    earnTTL,
		balanceTTL: balanceTTL,
	}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) EarnToken(ctx context.Context, identity string) (string, error) {
	value, err := s.client.Get(ctx, EarnTimeKey(identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read earn record: %w", err)
	}
	return value, nil
}

func (s *RedisStore) SetEarnToken(ctx context.Context, identity, token string) error {
	if err := s.client.Set(ctx, EarnTimeKey(identity), token, s.earnTTL).Err(); err != nil {
		return fmt.Errorf("failed to write earn record: %w", err)
	}
	return nil
}

func (s *RedisStore) Balance(ctx context.Context, identity string) (int64, error) {
	key := BalanceKey(identity)
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	balance, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Corrupted balance value. Reset to the implicit zero rather than
		// failing the request.
		s.logger.Warn("Resetting unparsable balance for ", identity, ": ", value)
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return 0, fmt.Errorf("failed to reset corrupted balance: %w", err)
		}
		return 0, nil
	}
	return balance, nil
}

func (s *RedisStore) IncrementBalance(ctx context.Context, identity string, amount int64) (int64, error) {
	key := BalanceKey(identity)

	balance, err := s.client.IncrBy(ctx, key, amount).Result()
	if err != nil && isNotIntegerError(err) {
		// Corrupted balance value. Reset and count this grant from zero.
		s.logger.Warn("Resetting unparsable balance for ", identity)
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return 0, fmt.Errorf("failed to reset corrupted balance: %w", err)
		}
		balance, err = s.client.IncrBy(ctx, key, amount).Result()
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment balance: %w", err)
	}

	if err := s.client.Expire(ctx, key, s.balanceTTL).Err(); err != nil {
		return 0, fmt.Errorf("failed to refresh balance expiry: %w", err)
	}
	return balance, nil
}

func (s *RedisStore) ClearBalance(ctx context.Context, identity string) error {
	if err := s.client.Del(ctx, BalanceKey(identity)).Err(); err != nil {
		return fmt.Errorf("failed to clear balance: %w", err)
	}
	return nil
}

func isNotIntegerError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not an integer")
}
