// Package cache provides a Redis-backed cache for evaluation results.
//
// Evaluation is pure, so a result is fully determined by its inputs:
// the cache key is a content fingerprint over the canonical JSON of
// (document, rules). The engine itself stays free of I/O; callers wrap
// Evaluate with Get/Put where repeated evaluation of unchanged models
// is worth avoiding.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/threatflow/engine/eval"
	"github.com/threatflow/engine/otm"
	"github.com/threatflow/engine/rule"
)

// Options configures the Redis connection.
type Options struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// KeyPrefix namespaces cache keys. Defaults to "threatflow:eval:".
	KeyPrefix string

	// ConnectTimeout is the maximum time to wait for connection
	// establishment. Defaults to 5s.
	ConnectTimeout time.Duration
}

// Cache stores evaluation results in Redis keyed by input fingerprint.
type Cache struct {
	client    *redis.Client
	keyPrefix string
}

// New creates a cache client and verifies the connection.
func New(opts Options) (*Cache, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "threatflow:eval:"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client, keyPrefix: opts.KeyPrefix}, nil
}

// Get returns the cached result for (doc, rules), reporting whether a
// cached entry existed.
func (c *Cache) Get(ctx context.Context, doc *otm.Document, rules []rule.Rule) (*eval.EvaluationResult, bool, error) {
	key, err := c.key(doc, rules)
	if err != nil {
		return nil, false, err
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var result eval.EvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &result, true, nil
}

// Put stores the result for (doc, rules) with the given TTL. A zero
// TTL stores the entry without expiry.
func (c *Cache) Put(ctx context.Context, doc *otm.Document, rules []rule.Rule, result *eval.EvaluationResult, ttl time.Duration) error {
	key, err := c.key(doc, rules)
	if err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// key fingerprints the evaluation inputs. encoding/json serializes
// struct fields in declaration order, so identical inputs always
// produce identical fingerprints.
func (c *Cache) key(doc *otm.Document, rules []rule.Rule) (string, error) {
	payload, err := json.Marshal(struct {
		Document *otm.Document `json:"document"`
		Rules    []rule.Rule   `json:"rules"`
	}{Document: doc, Rules: rules})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint inputs: %w", err)
	}
	sum := sha256.Sum256(payload)
	return c.keyPrefix + hex.EncodeToString(sum[:]), nil
}
