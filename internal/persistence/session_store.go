package persistence

import (
	"context"
	"strconv"
	"sync"

	"github.com/petrijr/wizard/pkg/api"
)

// SessionRepository stores wizard data inside the user's session, for
// wizards that should never outlive it. It speaks to the session through
// the narrow api.Session contract, so any session mechanism works.
//
// Each wizard type occupies one session entry holding an id -> record
// map; identities count up per type within the session. Like the cache
// backend, a cross-type mismatch is indistinguishable from a missing
// record, so load and save report ErrWizardNotFound and delete no-ops.
type SessionRepository struct {
	session api.Session
	prefix  string
}

var _ api.Repository = (*SessionRepository)(nil)

// NewSessionRepository creates a SessionRepository. prefix is optional
// and defaults to "wizard.".
func NewSessionRepository(session api.Session, prefix string) *SessionRepository {
	if prefix == "" {
		prefix = "wizard."
	}
	return &SessionRepository{session: session, prefix: prefix}
}

func (r *SessionRepository) sessionKey(w api.WizardRef) string {
	return r.prefix + w.Name()
}

func (r *SessionRepository) entries(w api.WizardRef) map[string][]byte {
	raw, ok := r.session.Get(r.sessionKey(w))
	if !ok {
		return map[string][]byte{}
	}
	entries, ok := raw.(map[string][]byte)
	if !ok {
		return map[string][]byte{}
	}
	return entries
}

func (r *SessionRepository) SaveData(ctx context.Context, w api.WizardRef, data map[string]any) error {
	entries := r.entries(w)

	if w.ID() == "" {
		// Counter-style ids, skipping over slots still taken by earlier
		// wizards in this session.
		next := len(entries) + 1
		for {
			if _, taken := entries[strconv.Itoa(next)]; !taken {
				break
			}
			next++
		}
		w.SetID(strconv.Itoa(next))

		blob, err := encodeData(data)
		if err != nil {
			return err
		}
		entries[w.ID()] = blob
		r.session.Put(r.sessionKey(w), entries)
		return nil
	}

	stored, ok := entries[w.ID()]
	if !ok {
		return api.ErrWizardNotFound
	}

	existing, err := decodeData(stored)
	if err != nil {
		return err
	}
	blob, err := encodeData(mergeData(existing, data))
	if err != nil {
		return err
	}
	entries[w.ID()] = blob
	r.session.Put(r.sessionKey(w), entries)
	return nil
}

func (r *SessionRepository) LoadData(ctx context.Context, w api.WizardRef) (map[string]any, error) {
	stored, ok := r.entries(w)[w.ID()]
	if !ok {
		return nil, api.ErrWizardNotFound
	}
	return decodeData(stored)
}

func (r *SessionRepository) DeleteWizard(ctx context.Context, w api.WizardRef) error {
	entries := r.entries(w)
	if _, ok := entries[w.ID()]; !ok {
		return nil
	}

	delete(entries, w.ID())
	if len(entries) == 0 {
		r.session.Forget(r.sessionKey(w))
	} else {
		r.session.Put(r.sessionKey(w), entries)
	}

	w.SetID("")
	return nil
}

// MemorySession is a map-backed api.Session for tests and single-process
// use.
type MemorySession struct {
	mu     sync.Mutex
	values map[string]any
}

var _ api.Session = (*MemorySession)(nil)

// NewMemorySession creates an empty MemorySession.
func NewMemorySession() *MemorySession {
	return &MemorySession{values: map[string]any{}}
}

func (s *MemorySession) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	return value, ok
}

func (s *MemorySession) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
}

func (s *MemorySession) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
}
