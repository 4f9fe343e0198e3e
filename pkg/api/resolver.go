package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownAction is returned when an action identifier has not been
// registered with the resolver.
var ErrUnknownAction = errors.New("unknown wizard action")

// Action runs once after the last step of a wizard is completed. It
// receives the wizard's transformed data and reports success or failure;
// on failure the wizard stays persisted and the submission can be retried.
type Action interface {
	Execute(ctx context.Context, payload any) ActionResult
}

// ActionFunc adapts a plain function to the Action interface.
type ActionFunc func(ctx context.Context, payload any) ActionResult

func (f ActionFunc) Execute(ctx context.Context, payload any) ActionResult {
	return f(ctx, payload)
}

// NullAction succeeds without doing anything. Wizards that configure no
// completion action get this one.
type NullAction struct{}

var _ Action = NullAction{}

func (NullAction) Execute(ctx context.Context, payload any) ActionResult {
	return ActionSuccess(nil)
}

// ActionResolver maps an opaque action identifier to a runnable Action.
// It is a narrow seam so applications can back it by their DI container,
// a service registry, or the plain map below.
type ActionResolver interface {
	Resolve(name string) (Action, error)
}

// RegistryResolver is a map-backed ActionResolver.
type RegistryResolver struct {
	mu      sync.RWMutex
	actions map[string]Action
}

var _ ActionResolver = (*RegistryResolver)(nil)

func NewRegistryResolver() *RegistryResolver {
	return &RegistryResolver{actions: map[string]Action{}}
}

// Register binds an action to an identifier, replacing any previous
// binding for the same name.
func (r *RegistryResolver) Register(name string, action Action) *RegistryResolver {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions[name] = action
	return r
}

func (r *RegistryResolver) Resolve(name string) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return action, nil
}
