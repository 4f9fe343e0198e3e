// Package api contains the core building blocks of the wizard engine. It
// provides the low-level primitives for defining steps and fields,
// validating submissions, persisting wizard state, and observing wizard
// behavior.
//
// Most users interact with the higher-level wizard package, which
// re-exports selected types and helpers from this package. The api
// package is intended for advanced use cases, custom integrations, or
// contributors extending the engine itself.
//
// # Concepts
//
// The api package centers around a small set of concepts:
//
//   - Wizard definitions, steps and fields
//   - Requests, responses and rendering
//   - Repositories and persistence contracts
//   - Completion actions and their resolver
//   - Observability
//
// # Definitions
//
// A Definition describes the structure of a wizard type: its slug, the
// ordered steps, the completion action, and lifecycle hooks. Definitions
// are immutable once constructed and shared; every request binds one into
// a fresh Wizard instance with its collaborators injected.
//
// # Steps and Fields
//
// Steps are configured with functional options and carry Fields, which
// declare validation rules, optional transforms, and dependencies on
// fields from other steps. A step is bound to its owning wizard with
// Init, which returns a copy so the configured step stays shareable.
//
// # Persistence
//
// Repository is the narrow seam all state travels through: SaveData
// merges a submission into the stored record, LoadData retrieves it, and
// DeleteWizard removes it. ExpiringRepository adds the bulk expiry sweep
// used by time-bounded backends. Implementations live in the internal
// persistence package and are constructed through the wizard package.
//
// # Observability
//
// Observer receives lifecycle notifications: loaded, saving, finishing,
// finished. The package ships a logging observer built on log/slog, an
// atomic counter set, a composite for fan-out, and an observer that
// deletes completed wizards from storage.
package api
