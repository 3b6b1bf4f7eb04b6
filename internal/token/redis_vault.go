package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const vaultKeyPrefix = "vault:v1:"

type redisVault struct {
	cache *redis.Client
}

// NewRedisVault creates a vault backed by Redis so outstanding values survive
// restarts and are shared across instances. SETNX guards issuance, GETDEL
// makes redemption a single atomic take.
func NewRedisVault(cache *redis.Client) Vault {
	return &redisVault{cache: cache}
}

func (v *redisVault) Put(ctx context.Context, id string, amount uint64) error {
	ok, err := v.cache.SetNX(ctx, vaultKeyPrefix+id, strconv.FormatUint(amount, 10), 0).Result()
	if err != nil {
		return fmt.Errorf("vault put: %w", err)
	}
	if !ok {
		return fmt.Errorf("value %s already outstanding", id)
	}
	return nil
}

func (v *redisVault) Redeem(ctx context.Context, id string) (uint64, error) {
	raw, err := v.cache.GetDel(ctx, vaultKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrValueNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("vault redeem: %w", err)
	}
	return strconv.ParseUint(raw, 10, 64)
}
