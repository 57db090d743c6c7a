package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

const shortCodeLength = 8

// ShortLinker maps recipe URLs to stable short codes and back.
type ShortLinker interface {
	Shorten(ctx context.Context, target string) (string, error)
	Resolve(ctx context.Context, code string) (string, error)
}

// RedisShortLinker stores short codes in Redis. Codes are derived from
// the target, so shortening the same URL twice yields the same code.
type RedisShortLinker struct {
	client *redis.Client
}

func NewRedisShortLinker(client *redis.Client) *RedisShortLinker {
	return &RedisShortLinker{client: client}
}

func (l *RedisShortLinker) Shorten(ctx context.Context, target string) (string, error) {
	code := shortCode(target)
	if err := l.client.Set(ctx, shortlinkKey(code), target, 0).Err(); err != nil {
		return "", err
	}
	return code, nil
}

func (l *RedisShortLinker) Resolve(ctx context.Context, code string) (string, error) {
	target, err := l.client.Get(ctx, shortlinkKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return target, nil
}

// MemoryShortLinker is the in-process fallback used when Redis is not
// configured, and by tests.
type MemoryShortLinker struct {
	mu    sync.Mutex
	codes map[string]string
}

func NewMemoryShortLinker() *MemoryShortLinker {
	return &MemoryShortLinker{codes: make(map[string]string)}
}

func (l *MemoryShortLinker) Shorten(ctx context.Context, target string) (string, error) {
	code := shortCode(target)
	l.mu.Lock()
	l.codes[code] = target
	l.mu.Unlock()
	return code, nil
}

func (l *MemoryShortLinker) Resolve(ctx context.Context, code string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	target, ok := l.codes[code]
	if !ok {
		return "", ErrNotFound
	}
	return target, nil
}

func shortCode(target string) string {
	sum := sha256.Sum256([]byte(target))
	return hex.EncodeToString(sum[:])[:shortCodeLength]
}

func shortlinkKey(code string) string {
	return "shortlink:" + code
}
