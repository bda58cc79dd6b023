// Package cache хранит сгенерированные значения слов в Redis, чтобы не обращаться
// к языковой модели повторно за одним и тем же переводом.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/wordbook/internal/config"
	"github.com/magabrotheeeer/wordbook/internal/metrics"
)

const keyPrefix = "wordbook:meaning:"

// Cache — JSON-кэш значений слов поверх Redis.
type Cache struct {
	Db  *redis.Client
	ttl time.Duration
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db, ttl: cfg.MeaningTTL}, nil
}

// MeaningKey строит ключ значения слова. Регистр слова не учитывается,
// пустой исходный язык означает автоопределение.
func MeaningKey(sourceLang, targetLang, word string) string {
	source := strings.ToLower(strings.TrimSpace(sourceLang))
	if source == "" {
		source = "auto"
	}
	target := strings.ToLower(strings.TrimSpace(targetLang))
	return keyPrefix + source + ":" + target + ":" + strings.ToLower(strings.TrimSpace(word))
}

type meaningEntry struct {
	Meaning string    `json:"meaning"`
	Cached  time.Time `json:"cached_at"`
}

// GetMeaning возвращает значение из кэша. found=false при промахе.
func (c *Cache) GetMeaning(ctx context.Context, sourceLang, targetLang, word string) (string, bool, error) {
	var entry meaningEntry
	found, err := c.get(ctx, MeaningKey(sourceLang, targetLang, word), &entry)
	if err != nil {
		return "", false, err
	}
	result := "miss"
	if found {
		result = "hit"
	}
	metrics.MeaningCache.WithLabelValues(result).Inc()
	return entry.Meaning, found, nil
}

// SetMeaning сохраняет значение на время из конфига.
func (c *Cache) SetMeaning(ctx context.Context, sourceLang, targetLang, word, meaning string) error {
	return c.set(ctx, MeaningKey(sourceLang, targetLang, word), meaningEntry{Meaning: meaning, Cached: time.Now().UTC()}, c.ttl)
}

// Close закрывает соединение с Redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}

func (c *Cache) get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Db.Set(ctx, key, jsonData, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Nop — кэш, который ничего не хранит. Используется, когда Redis не настроен.
type Nop struct{}

// GetMeaning всегда возвращает промах.
func (Nop) GetMeaning(context.Context, string, string, string) (string, bool, error) {
	return "", false, nil
}

// SetMeaning ничего не делает.
func (Nop) SetMeaning(context.Context, string, string, string, string) error { return nil }
