package wizard

import (
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/wizard/internal/engine"
	"github.com/petrijr/wizard/internal/persistence"
	"github.com/petrijr/wizard/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Wizard       = api.Wizard
	Definition   = api.Definition
	Summary      = api.Summary
	StepSummary  = api.StepSummary
	Step         = api.Step
	StepOption   = api.StepOption
	StepContext  = api.StepContext
	Field        = api.Field
	Ruleset      = api.Ruleset
	Request      = api.Request
	Response     = api.Response
	Redirect     = api.Redirect
	StepResult   = api.StepResult
	ActionResult = api.ActionResult

	Action           = api.Action
	ActionFunc       = api.ActionFunc
	NullAction       = api.NullAction
	ActionResolver   = api.ActionResolver
	RegistryResolver = api.RegistryResolver

	Repository         = api.Repository
	ExpiringRepository = api.ExpiringRepository
	WizardRef          = api.WizardRef
	Session            = api.Session
	TTL                = api.TTL

	ResponseRenderer = api.ResponseRenderer
	FakeRenderer     = api.FakeRenderer

	Validator       = api.Validator
	ValidationError = api.ValidationError

	Observer                = api.Observer
	LoggingObserver         = api.LoggingObserver
	BasicMetrics            = api.BasicMetrics
	BasicMetricsSnapshot    = api.BasicMetricsSnapshot
	CompositeObserver       = api.CompositeObserver
	NoopObserver            = api.NoopObserver
	RemoveCompletedObserver = api.RemoveCompletedObserver

	MemoryRepository   = persistence.MemoryRepository
	DatabaseRepository = persistence.DatabaseRepository
	DatabaseOption     = persistence.DatabaseOption
	ExpiryHook         = persistence.ExpiryHook
	CacheRepository    = persistence.CacheRepository
	SessionRepository  = persistence.SessionRepository
	MemorySession      = persistence.MemorySession

	// Config describes the collaborators a wizard instance is built with.
	Config = engine.Config
)

// Re-export the sentinel errors callers match with errors.Is.

var (
	ErrWizardNotFound   = api.ErrWizardNotFound
	ErrUnknownStep      = api.ErrUnknownStep
	ErrCannotUpdateStep = api.ErrCannotUpdateStep
	ErrUnknownAction    = api.ErrUnknownAction
)

// Re-export the step and field construction helpers.

var (
	NewStep      = api.NewStep
	WithTitle    = api.WithTitle
	WithFields   = api.WithFields
	WithRules    = api.WithRules
	WithOmit     = api.WithOmit
	WithComplete = api.WithComplete
	WithHandler  = api.WithHandler
	WithViewData = api.WithViewData

	NewField   = api.NewField
	NewRequest = api.NewRequest

	StepSuccess   = api.StepSuccess
	StepFailure   = api.StepFailure
	ActionSuccess = api.ActionSuccess
	ActionFailure = api.ActionFailure

	TTLFromSeconds = api.TTLFromSeconds
	MustTTL        = api.MustTTL
)

// Re-export common collaborator helpers.

var (
	NewRegistryResolver  = api.NewRegistryResolver
	NewFakeRenderer      = api.NewFakeRenderer
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// StateKey is the reserved key in wizard data holding per-step completion
// flags.
const StateKey = api.StateKey

// NewWizard binds a Definition into a fresh wizard instance for one
// request. The Definition can be shared; collaborators are injected per
// request through Config.
func NewWizard(def Definition, cfg Config) (Wizard, error) {
	return engine.New(def, cfg)
}

// Repository constructors
// These wrap the internal/persistence package so external callers never
// need to import internal packages.

// NewMemoryRepository returns a goroutine-safe in-memory Repository. Best
// for tests and wizards whose state may evaporate with the process.
func NewMemoryRepository() *MemoryRepository {
	return persistence.NewMemoryRepository()
}

// NewDatabaseRepository returns a Repository that persists wizards in a
// relational table through database/sql, initializing the schema on first
// use. It also implements ExpiringRepository for periodic cleanup sweeps.
func NewDatabaseRepository(db *sql.DB, opts ...DatabaseOption) (*DatabaseRepository, error) {
	return persistence.NewDatabaseRepository(db, opts...)
}

// WithExpiryHook registers a hook the expiry sweep calls for every record
// it is about to delete.
func WithExpiryHook(hook ExpiryHook) DatabaseOption {
	return persistence.WithExpiryHook(hook)
}

// NewCacheRepository returns a Repository that persists wizards in Redis
// with a native per-record TTL. prefix may be empty for the default.
func NewCacheRepository(client *redis.Client, ttl TTL, prefix string) *CacheRepository {
	return persistence.NewCacheRepository(client, ttl, prefix)
}

// NewSessionRepository returns a Repository that stores wizards in the
// user's session. prefix may be empty for the default.
func NewSessionRepository(session Session, prefix string) *SessionRepository {
	return persistence.NewSessionRepository(session, prefix)
}

// NewMemorySession returns a map-backed Session for tests and
// single-process use.
func NewMemorySession() *MemorySession {
	return persistence.NewMemorySession()
}
