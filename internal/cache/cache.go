package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/car2go/car2go-api/internal/config"
	"github.com/car2go/car2go-api/internal/models"
)

const (
	carListKey   = "cars:all"
	carKeyPrefix = "cars:id:"
	carTTL       = 5 * time.Minute
)

// CarCache is a read-through cache for the car catalogue, the hottest
// read path of the API. Misses and redis outages both fall back to the
// database; writes invalidate.
type CarCache struct {
	rdb *redis.Client
}

func NewCarCache(cfg *config.Config) *CarCache {
	return &CarCache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}),
	}
}

func (c *CarCache) GetList(ctx context.Context) ([]models.Car, bool) {
	raw, err := c.rdb.Get(ctx, carListKey).Bytes()
	if err != nil {
		return nil, false
	}

	var cars []models.Car
	if err := json.Unmarshal(raw, &cars); err != nil {
		return nil, false
	}
	return cars, true
}

func (c *CarCache) SetList(ctx context.Context, cars []models.Car) {
	raw, err := json.Marshal(cars)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, carListKey, raw, carTTL)
}

func (c *CarCache) Get(ctx context.Context, id string) (*models.Car, bool) {
	raw, err := c.rdb.Get(ctx, carKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return nil, false
		}
		return nil, false
	}

	var car models.Car
	if err := json.Unmarshal(raw, &car); err != nil {
		return nil, false
	}
	return &car, true
}

func (c *CarCache) Set(ctx context.Context, id string, car *models.Car) {
	raw, err := json.Marshal(car)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, carKeyPrefix+id, raw, carTTL)
}

// Invalidate drops the list and the single entry after any car write.
func (c *CarCache) Invalidate(ctx context.Context, id string) {
	keys := []string{carListKey}
	if id != "" {
		keys = append(keys, carKeyPrefix+id)
	}
	c.rdb.Del(ctx, keys...)
}
