package api

import (
	"context"
	"errors"
	"time"
)

// ErrWizardNotFound is returned when no persisted record exists for a
// wizard's identity, or when the record belongs to a different wizard type.
// Time-bounded backends also return it for expired records.
var ErrWizardNotFound = errors.New("wizard not found")

// WizardRef is the identity a repository keys records by: the wizard's id
// (empty until first persisted) and its type name. Repositories assign the
// id on first save via SetID.
type WizardRef interface {
	ID() string
	SetID(id string)
	Name() string
}

// Repository persists in-progress wizard data between steps.
//
// SaveData allocates an identity on first save and stores data as the
// initial record. On subsequent saves it shallow-merges data into the
// existing record: submitted keys overwrite, untouched keys survive. Saving
// against an id that has no record fails with ErrWizardNotFound.
//
// LoadData returns the stored data, failing with ErrWizardNotFound when no
// record exists for the (id, type) pair.
//
// DeleteWizard removes the record and clears the wizard's id. Deleting a
// record that does not exist is a no-op; see the per-backend documentation
// for how cross-type mismatches are handled.
type Repository interface {
	SaveData(ctx context.Context, w WizardRef, data map[string]any) error
	LoadData(ctx context.Context, w WizardRef) (map[string]any, error)
	DeleteWizard(ctx context.Context, w WizardRef) error
}

// ExpiringRepository is implemented by backends whose records carry an
// update timestamp and can be swept. DeleteExpired removes every record
// last touched before the cutoff and returns how many were deleted.
// Scheduled cleanup jobs call this with ttl.ExpiresAfter().
type ExpiringRepository interface {
	Repository
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// Session abstracts whatever per-user session mechanism the application
// uses, for the session-backed repository. Implementations do not need to
// be safe for concurrent use; a session belongs to one request at a time.
type Session interface {
	Get(key string) (any, bool)
	Put(key string, value any)
	Forget(key string)
}
