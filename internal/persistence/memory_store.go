package persistence

import (
	"context"
	"strconv"
	"sync"

	"github.com/petrijr/wizard/pkg/api"
)

// MemoryRepository is a goroutine-safe in-memory Repository backed by
// maps. It is the backend of choice for tests and for wizards whose state
// may evaporate with the process.
//
// Identities are sequential integers per repository. Records are stored
// JSON-encoded so values round-trip exactly like they do in the durable
// backends. Deleting a missing record is a no-op; deleting an identity
// that belongs to a different wizard type fails with ErrWizardNotFound.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int
	// wizard type name -> id -> encoded record
	records map[string]map[string][]byte
}

var _ api.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:  1,
		records: map[string]map[string][]byte{},
	}
}

func (r *MemoryRepository) SaveData(ctx context.Context, w api.WizardRef, data map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w.ID() == "" {
		w.SetID(strconv.Itoa(r.nextID))
		r.nextID++

		blob, err := encodeData(data)
		if err != nil {
			return err
		}
		r.bucket(w.Name())[w.ID()] = blob
		return nil
	}

	if r.ownedByOtherType(w) {
		return api.ErrWizardNotFound
	}

	stored, ok := r.bucket(w.Name())[w.ID()]
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
	r.bucket(w.Name())[w.ID()] = blob
	return nil
}

func (r *MemoryRepository) LoadData(ctx context.Context, w api.WizardRef) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bucket(w.Name())[w.ID()]
	if !ok {
		return nil, api.ErrWizardNotFound
	}
	return decodeData(stored)
}

func (r *MemoryRepository) DeleteWizard(ctx context.Context, w api.WizardRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ownedByOtherType(w) {
		return api.ErrWizardNotFound
	}

	if _, ok := r.bucket(w.Name())[w.ID()]; !ok {
		return nil
	}

	delete(r.bucket(w.Name()), w.ID())
	w.SetID("")
	return nil
}

func (r *MemoryRepository) bucket(name string) map[string][]byte {
	b, ok := r.records[name]
	if !ok {
		b = map[string][]byte{}
		r.records[name] = b
	}
	return b
}

// ownedByOtherType reports whether the wizard's identity is taken by a
// record of a different wizard type.
func (r *MemoryRepository) ownedByOtherType(w api.WizardRef) bool {
	for name, bucket := range r.records {
		if name == w.Name() {
			continue
		}
		if _, ok := bucket[w.ID()]; ok {
			return true
		}
	}
	return false
}
