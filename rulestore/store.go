// Package rulestore provides an etcd-backed rule source.
//
// Rule documents live as values under a common key prefix; each value
// is a YAML or JSON rule document holding one rule object or a list of
// rule objects. Listing reads the prefix in ascending key order, so
// the resulting rule order is deterministic for a given store state,
// matching the lexicographic discipline of directory-based loading.
package rulestore

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/threatflow/engine/rule"
)

// Config configures the etcd connection and key layout.
type Config struct {
	// Endpoints lists the etcd cluster endpoints (required).
	Endpoints []string

	// Prefix is the key prefix rule documents live under.
	// Defaults to "/threatflow/rules/".
	Prefix string

	// DialTimeout bounds connection establishment. Defaults to 5s.
	DialTimeout time.Duration
}

// Store reads rule sets from etcd.
//
// Thread-safety: all methods are safe for concurrent use.
type Store struct {
	client *clientv3.Client
	prefix string
}

// New creates a store from the provided configuration and verifies
// connectivity. The store must be closed with Close when no longer
// needed.
func New(cfg Config) (*Store, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("rulestore endpoints cannot be empty")
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "/threatflow/rules/"
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if _, err := cli.Get(ctx, prefix, clientv3.WithCountOnly()); err != nil {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &Store{client: cli, prefix: prefix}, nil
}

// List loads every rule document under the prefix, visiting keys in
// ascending order, and returns the concatenated rules. A single
// invalid rule document fails the whole listing: a store serving
// partially loaded rule sets would silently change which findings get
// produced.
func (s *Store) List(ctx context.Context) ([]rule.Rule, error) {
	resp, err := s.client.Get(ctx, s.prefix,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, fmt.Errorf("failed to list rules under %s: %w", s.prefix, err)
	}

	var rules []rule.Rule
	for _, kv := range resp.Kvs {
		parsed, err := rule.ParseAll(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid rule document at %s: %w", kv.Key, err)
		}
		rules = append(rules, parsed...)
	}
	return rules, nil
}

// Watch returns a channel that receives the full rule set whenever
// anything under the prefix changes. The current state is sent
// immediately. The channel is closed when the context is canceled or
// the watch fails.
func (s *Store) Watch(ctx context.Context) (<-chan []rule.Rule, error) {
	ch := make(chan []rule.Rule, 1)

	initial, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	ch <- initial

	watchChan := s.client.Watch(ctx, s.prefix, clientv3.WithPrefix())

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case watchResp, ok := <-watchChan:
				if !ok {
					return
				}
				if watchResp.Err() != nil {
					return
				}

				rules, err := s.List(ctx)
				if err != nil {
					// Skip this update; the next change retries.
					continue
				}
				select {
				case ch <- rules:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// Close releases the etcd connection.
func (s *Store) Close() error {
	return s.client.Close()
}
