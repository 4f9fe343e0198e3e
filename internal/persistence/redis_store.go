package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/petrijr/wizard/pkg/api"
)

// CacheRepository is a Repository backed by Redis with a native TTL per
// record. Key layout:
//
//	<prefix><wizard name>:<id> => JSON-encoded wizard data
//
// Identities are time-ordered UUIDs (v7). Every save rewrites the key
// with a fresh TTL, so active wizards stay alive and abandoned ones
// expire on their own; an expired record behaves exactly like a missing
// one. Deleting a missing record is a no-op. A cross-type identity
// mismatch is indistinguishable from a missing record here (the type is
// part of the key), so load and save report ErrWizardNotFound and delete
// no-ops.
type CacheRepository struct {
	client *redis.Client
	prefix string
	ttl    api.TTL
}

var _ api.Repository = (*CacheRepository)(nil)

// NewCacheRepository creates a CacheRepository. prefix is optional and
// defaults to "wizard:".
func NewCacheRepository(client *redis.Client, ttl api.TTL, prefix string) *CacheRepository {
	if prefix == "" {
		prefix = "wizard:"
	}
	return &CacheRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *CacheRepository) key(w api.WizardRef) string {
	return r.prefix + w.Name() + ":" + w.ID()
}

func (r *CacheRepository) SaveData(ctx context.Context, w api.WizardRef, data map[string]any) error {
	if w.ID() == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("allocate wizard id: %w", err)
		}
		w.SetID(id.String())
		return r.store(ctx, w, data)
	}

	stored, err := r.LoadData(ctx, w)
	if err != nil {
		return err
	}
	return r.store(ctx, w, mergeData(stored, data))
}

func (r *CacheRepository) LoadData(ctx context.Context, w api.WizardRef) (map[string]any, error) {
	blob, err := r.client.Get(ctx, r.key(w)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, api.ErrWizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load wizard: %w", err)
	}
	return decodeData(blob)
}

func (r *CacheRepository) DeleteWizard(ctx context.Context, w api.WizardRef) error {
	deleted, err := r.client.Del(ctx, r.key(w)).Result()
	if err != nil {
		return fmt.Errorf("delete wizard: %w", err)
	}
	if deleted > 0 {
		w.SetID("")
	}
	return nil
}

// store writes the record and refreshes its TTL.
func (r *CacheRepository) store(ctx context.Context, w api.WizardRef, data map[string]any) error {
	blob, err := encodeData(data)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(w), blob, r.ttl.Duration()).Err(); err != nil {
		return fmt.Errorf("save wizard: %w", err)
	}
	return nil
}
