// Package wizard provides a lightweight, embeddable multi-step form
// engine for Go.
//
// Wizard is designed for backend services that collect data across
// several pages before acting on it once: onboarding flows, checkouts,
// configuration assistants. It runs fully in Go, supports multiple
// persistence backends, and stays agnostic of the HTTP framework and
// template engine on top of it.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. Definition
//  2. Step and Field
//  3. Wizard
//  4. Repository
//  5. Action
//
// # Definition
//
// A Definition is the static configuration of a wizard type: its slug,
// ordered steps, the completion action, and optional lifecycle hooks. It
// is built once, typically with the fluent Builder, and shared; every
// request binds it into a fresh Wizard instance.
//
// # Step and Field
//
// A Step is one page of the flow. Its fields declare validation rules,
// optional value transforms, and dependencies on fields from earlier
// steps. When a dependency changes, the dependent field is cleared and
// its step marked incomplete, forcing the user back through it.
//
// Steps can be omitted per request via a predicate, for example skipping
// a gift-wrap page for digital orders. Omitted steps disappear from
// navigation and summaries.
//
// # Wizard
//
// A Wizard is one running instance serving one request. Its operations
// mirror a resource controller:
//
//   - Create renders the first step of a fresh wizard
//   - Store handles the first submission and persists the wizard
//   - Show renders a step, redirecting when it is not reachable yet
//   - Update handles subsequent submissions and advances the flow
//   - Destroy deletes the persisted state
//
// Users can revisit completed steps at any time, but can never jump past
// the first incomplete one.
//
// # Repository
//
// All state between requests lives in a Repository. Four backends ship
// with the package:
//
//   - In-memory (non-durable, best for tests)
//   - Database via database/sql (embedded durability, expiry sweeps)
//   - Redis (native per-record TTL)
//   - Session (state scoped to the user's session)
//
// Abandoned wizards expire: the Redis backend lets records lapse on
// their own, and the database backend exposes DeleteExpired for a
// periodic sweep.
//
// # Action
//
// After the last step the wizard resolves its completion action by name
// and executes it exactly once with the accumulated data. On failure the
// wizard stays persisted and the last step can be resubmitted. Deleting
// the record after success is left to an observer, typically
// RemoveCompletedObserver, so other subscribers still see the finished
// wizard.
//
// For examples, see the package tests.
package wizard
