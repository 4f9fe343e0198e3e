package api

import (
	"context"
	"errors"
)

// ErrUnknownStep is returned when a slug does not match any configured
// step. It indicates a misconfiguration or a forged URL, not user input,
// and is meant to propagate to the surrounding framework.
var ErrUnknownStep = errors.New("unknown wizard step")

// ErrCannotUpdateStep is returned when an update targets a step the user
// is not allowed to edit yet. Like ErrUnknownStep it signals a navigation
// violation rather than a validation failure.
var ErrCannotUpdateStep = errors.New("step cannot be updated")

// Wizard is one running instance of a multi-step workflow, constructed
// fresh per request with its collaborators injected. All state lives in
// the repository between requests.
//
// The soft failure modes (validation, rejected submissions, failed
// completion actions) come back as responses; ErrWizardNotFound,
// ErrUnknownStep, ErrCannotUpdateStep and *ValidationError come back as
// errors for the caller to map onto its framework.
type Wizard interface {
	StepContext

	// Title returns the wizard's display name.
	Title() string

	// Description returns the wizard's description.
	Description() string

	// Create renders the first available step of a wizard that has not
	// been persisted yet. No repository interaction happens.
	Create(ctx context.Context, r *Request) (Response, error)

	// Show renders the step identified by slug, or redirects to the first
	// incomplete step when slug is empty or the target is not editable.
	Show(ctx context.Context, r *Request, id, slug string) (Response, error)

	// Store handles the very first submission: it processes the first
	// available step, persists the wizard for the first time, and either
	// redirects to the second step or, for single-step wizards, runs the
	// completion sequence.
	Store(ctx context.Context, r *Request) (Response, error)

	// Update handles the submission of a step in an existing wizard:
	// process, merge, invalidate dependents, persist, then move on to the
	// next step, or into the completion sequence when this was the last.
	Update(ctx context.Context, r *Request, id, slug string) (Response, error)

	// Destroy deletes the wizard's persisted state.
	Destroy(ctx context.Context, r *Request, id string) (Response, error)

	// Summary returns a read-only snapshot of the wizard's progress.
	Summary() Summary
}

// Definition is the static configuration of a wizard type: its identity,
// ordered steps, completion action, and lifecycle hooks. A Definition is
// immutable once built and may be shared; each request binds it into a
// fresh Wizard instance.
type Definition struct {
	// Slug identifies the wizard type in URLs and in storage.
	Slug string

	// Title is the display name of the wizard.
	Title string

	// Description gets shown wherever wizards are listed.
	Description string

	// Steps in configuration order. Slugs must be unique.
	Steps []*Step

	// OnCompleteAction is the resolver identifier of the action that runs
	// after the last step. Empty means NullAction.
	OnCompleteAction string

	// RedirectTo is the URL the default hooks redirect to after the
	// wizard completes or is deleted.
	RedirectTo string

	// URLPrefix is the path prefix step URLs in summaries are built
	// under. Defaults to "/wizard".
	URLPrefix string

	// TransformData shapes the accumulated data into the payload passed
	// to the completion action. Defaults to AllData.
	TransformData func(r *Request, w Wizard) any

	// SharedData is merged into every step's view data.
	SharedData func(r *Request, w Wizard) map[string]any

	// OnAfterComplete builds the response after a successful completion
	// action. Defaults to a Redirect to RedirectTo.
	OnAfterComplete func(w Wizard, result ActionResult) Response

	// BeforeDelete runs before the wizard's record is deleted; returning
	// an error aborts the deletion.
	BeforeDelete func(ctx context.Context, r *Request, w Wizard) error

	// OnAfterDelete builds the response after deletion. Defaults to a
	// Redirect to RedirectTo.
	OnAfterDelete func(w Wizard) Response
}

// Summary is a read-only snapshot of a wizard's progress, intended for
// rendering step navigation.
type Summary struct {
	ID    string
	Slug  string
	Title string
	Steps []StepSummary
}

// StepSummary describes one available step in a Summary.
type StepSummary struct {
	Slug     string
	Title    string
	Complete bool
	Active   bool

	// URL is empty until the wizard has been persisted.
	URL string
}
