package api

// StateKey is the reserved key inside a wizard's data under which the
// machine records, per step slug, whether the step has been completed.
// Invalidated steps have their flag set back to nil.
const StateKey = "_arcanist"

// StepContext is the view of its owning wizard that a step gets access to
// after Init: identity plus read access to the accumulated data.
type StepContext interface {
	WizardRef

	// Exists reports whether the wizard has been persisted at least once.
	Exists() bool

	// Data returns a stored value by (possibly dotted) key, or fallback.
	Data(key string, fallback any) any

	// AllData returns the accumulated answers without the reserved
	// completion-state entry.
	AllData() map[string]any
}

// HandleFunc is a step's business logic. It receives the validated,
// transformed payload and decides whether the submission is accepted.
type HandleFunc func(r *Request, payload map[string]any) StepResult

// ViewDataFunc computes the data a step's template is rendered with.
type ViewDataFunc func(r *Request, s *Step) map[string]any

// PredicateFunc decides a per-request step property, such as omission.
type PredicateFunc func(w StepContext) bool

// Step is one page of a wizard: a field set, a completeness predicate, an
// optional omission predicate, and an optional handler for custom business
// logic. Steps are configured up front via options and bound to their
// owning wizard with Init.
type Step struct {
	slug   string
	title  string
	fields []*Field

	rules      map[string]Ruleset
	omitFn     PredicateFunc
	completeFn PredicateFunc
	handleFn   HandleFunc
	viewDataFn ViewDataFunc

	wizard StepContext
	index  int
}

// StepOption configures a step at construction time.
type StepOption func(*Step)

// NewStep creates a step with the given slug.
//
//	api.NewStep("shipping-address",
//	    api.WithTitle("Shipping address"),
//	    api.WithFields(
//	        api.NewField("street").WithRules("required"),
//	        api.NewField("city").WithRules("required"),
//	    ),
//	)
func NewStep(slug string, opts ...StepOption) *Step {
	if slug == "" {
		panic("wizard: step slug must not be empty")
	}
	s := &Step{slug: slug, title: slug}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithTitle sets the display name shown in step lists.
func WithTitle(title string) StepOption {
	return func(s *Step) { s.title = title }
}

// WithFields declares the step's fields in submission order.
func WithFields(fields ...*Field) StepOption {
	return func(s *Step) { s.fields = fields }
}

// WithRules overrides the validation rules that are otherwise derived from
// the step's fields.
func WithRules(rules map[string]Ruleset) StepOption {
	return func(s *Step) { s.rules = rules }
}

// WithOmit registers a predicate that excludes the step from navigation
// and summaries when it returns true.
func WithOmit(fn PredicateFunc) StepOption {
	return func(s *Step) { s.omitFn = fn }
}

// WithComplete overrides the default completeness check, which looks up
// the step's completion flag in the wizard data.
func WithComplete(fn PredicateFunc) StepOption {
	return func(s *Step) { s.completeFn = fn }
}

// WithHandler registers business logic that runs after validation. The
// default handler wraps the payload in a successful result.
func WithHandler(fn HandleFunc) StepOption {
	return func(s *Step) { s.handleFn = fn }
}

// WithViewData overrides the default view-data projection.
func WithViewData(fn ViewDataFunc) StepOption {
	return func(s *Step) { s.viewDataFn = fn }
}

// Init binds the step to its owning wizard and ordinal position among all
// configured steps. It returns a bound copy so a Definition can be shared
// between concurrent wizard instances; owner and index are immutable after
// attachment.
func (s *Step) Init(w StepContext, index int) *Step {
	bound := *s
	bound.wizard = w
	bound.index = index
	return &bound
}

// Slug identifies the step in URLs and as its completion-state key. It
// must be unique within a wizard.
func (s *Step) Slug() string { return s.slug }

// Title returns the step's display name.
func (s *Step) Title() string { return s.title }

// Index returns the step's ordinal position among all configured steps,
// including omitted ones.
func (s *Step) Index() int { return s.index }

// Fields returns the step's field descriptors.
func (s *Step) Fields() []*Field { return s.fields }

// Rules returns the validation rules for submitting this step, derived
// from the fields unless overridden with WithRules.
func (s *Step) Rules() map[string]Ruleset {
	if s.rules != nil {
		return s.rules
	}
	rules := make(map[string]Ruleset, len(s.fields))
	for _, field := range s.fields {
		rules[field.Name] = field.Rules
	}
	return rules
}

// DependentFields returns the fields that declare dependencies.
func (s *Step) DependentFields() []*Field {
	var dependent []*Field
	for _, field := range s.fields {
		if len(field.Dependencies) > 0 {
			dependent = append(dependent, field)
		}
	}
	return dependent
}

// IsComplete reports whether this step has been successfully submitted.
// The default checks the step's completion flag in the wizard data.
func (s *Step) IsComplete() bool {
	if s.completeFn != nil {
		return s.completeFn(s.wizard)
	}
	flag := s.wizard.Data(StateKey+"."+s.slug, false)
	b, ok := flag.(bool)
	return ok && b
}

// Omit reports whether the step should be excluded from the available step
// list. Defaults to false.
func (s *Step) Omit() bool {
	if s.omitFn == nil {
		return false
	}
	return s.omitFn(s.wizard)
}

// ViewData returns the data the step's template is rendered with. The
// default exposes the current value of every field declared in Rules,
// re-keyed by top-level field name.
func (s *Step) ViewData(r *Request) map[string]any {
	if s.viewDataFn != nil {
		return s.viewDataFn(r, s)
	}
	return s.WithFormData(nil)
}

// WithFormData projects the fields from Rules into view data, collapsing
// nested keys to their root segment, and merges extra on top. Custom
// ViewDataFuncs use it to extend rather than replace the default.
func (s *Step) WithFormData(extra map[string]any) map[string]any {
	data := map[string]any{}
	for key := range s.Rules() {
		root := RootKey(key)
		data[root] = s.wizard.Data(root, nil)
	}
	for key, value := range extra {
		data[key] = value
	}
	return data
}

// Data returns a stored wizard value by key, or fallback.
func (s *Step) Data(key string, fallback any) any {
	return s.wizard.Data(key, fallback)
}

// Exists reports whether the owning wizard has been persisted.
func (s *Step) Exists() bool {
	return s.wizard.Exists()
}

// Process validates the submission against the step's rules, maps each
// field's raw value through its transform, and hands the payload to the
// step's handler. Validation failures are returned as a *ValidationError;
// business-logic rejections come back as a failed StepResult.
func (s *Step) Process(r *Request, v Validator) (StepResult, error) {
	validated, err := v.Validate(r.All(), s.Rules())
	if err != nil {
		return StepResult{}, err
	}

	payload := make(map[string]any, len(s.fields))
	for _, field := range s.fields {
		payload[field.Name] = field.Value(validated[field.Name])
	}

	return s.Handle(r, payload), nil
}

// Handle runs the step's business logic. The default accepts the payload
// unchanged.
func (s *Step) Handle(r *Request, payload map[string]any) StepResult {
	if s.handleFn != nil {
		return s.handleFn(r, payload)
	}
	return StepSuccess(payload)
}
