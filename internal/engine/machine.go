package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/petrijr/wizard/pkg/api"
)

// Config describes the collaborators a wizard instance is constructed
// with. Repository and Renderer are required; the rest default to the
// registry resolver, the noop observer, and the built-in rule validator.
type Config struct {
	Repository api.Repository
	Renderer   api.ResponseRenderer
	Resolver   api.ActionResolver
	Observer   api.Observer
	Validator  api.Validator
}

// Machine is the wizard state machine. One Machine serves one request: it
// loads persisted data, resolves the step being addressed, enforces the
// editability policy, merges submissions, runs the dependent-field
// invalidation cascade, and sequences the completion action.
type Machine struct {
	def       api.Definition
	repo      api.Repository
	renderer  api.ResponseRenderer
	resolver  api.ActionResolver
	observer  api.Observer
	validator api.Validator

	id      string
	data    map[string]any
	current int

	steps []*api.Step
	// available caches the non-omitted steps. It is computed once per
	// instance; recomputing would let a step's omission decision flip
	// mid-request and break navigation.
	available []*api.Step
}

var _ api.Wizard = (*Machine)(nil)

// New binds a Definition into a fresh wizard instance. Each configured
// step is attached to the machine with its ordinal position; the
// Definition itself is left untouched and can be shared.
func New(def api.Definition, cfg Config) (*Machine, error) {
	if def.Slug == "" {
		return nil, fmt.Errorf("wizard slug is required")
	}
	if len(def.Steps) == 0 {
		return nil, fmt.Errorf("wizard %q must have at least one step", def.Slug)
	}
	if cfg.Repository == nil {
		return nil, fmt.Errorf("wizard %q needs a repository", def.Slug)
	}
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("wizard %q needs a response renderer", def.Slug)
	}

	seen := make(map[string]struct{}, len(def.Steps))
	for _, step := range def.Steps {
		if step == nil {
			return nil, fmt.Errorf("wizard %q has a nil step", def.Slug)
		}
		if _, dup := seen[step.Slug()]; dup {
			return nil, fmt.Errorf("wizard %q has duplicate step slug %q", def.Slug, step.Slug())
		}
		seen[step.Slug()] = struct{}{}
	}

	if def.RedirectTo == "" {
		def.RedirectTo = "/home"
	}
	if def.URLPrefix == "" {
		def.URLPrefix = "/wizard"
	}

	m := &Machine{
		def:       def,
		repo:      cfg.Repository,
		renderer:  cfg.Renderer,
		resolver:  cfg.Resolver,
		observer:  cfg.Observer,
		validator: cfg.Validator,
		data:      map[string]any{},
	}
	if m.resolver == nil {
		m.resolver = api.NewRegistryResolver()
	}
	if m.observer == nil {
		m.observer = api.NoopObserver{}
	}
	if m.validator == nil {
		m.validator = api.RuleValidator{}
	}

	m.steps = make([]*api.Step, len(def.Steps))
	for i, step := range def.Steps {
		m.steps[i] = step.Init(m, i)
	}

	return m, nil
}

// ID returns the wizard's persisted identity, or "" before the first save.
func (m *Machine) ID() string { return m.id }

// SetID is called by repositories when they allocate an identity.
func (m *Machine) SetID(id string) { m.id = id }

// Name returns the wizard type identifier used as the storage key.
func (m *Machine) Name() string { return m.def.Slug }

// Title returns the wizard's display name.
func (m *Machine) Title() string { return m.def.Title }

// Description returns the wizard's description.
func (m *Machine) Description() string { return m.def.Description }

// Exists reports whether the wizard has been persisted at least once.
func (m *Machine) Exists() bool { return m.id != "" }

// Data returns a stored value by (possibly dotted) key, or fallback.
func (m *Machine) Data(key string, fallback any) any {
	return api.DataGet(m.data, key, fallback)
}

// AllData returns the accumulated answers without the reserved
// completion-state entry.
func (m *Machine) AllData() map[string]any {
	data := make(map[string]any, len(m.data))
	for key, value := range m.data {
		if key == api.StateKey {
			continue
		}
		data[key] = value
	}
	return data
}

// Create renders the first available step without touching the repository.
func (m *Machine) Create(ctx context.Context, r *api.Request) (api.Response, error) {
	first, err := m.firstAvailableStep()
	if err != nil {
		return nil, err
	}
	return m.renderStep(r, first)
}

// Show renders the step identified by slug. Without a slug, or when the
// target step is not editable yet, the user is redirected to the first
// incomplete step instead.
func (m *Machine) Show(ctx context.Context, r *api.Request, id, slug string) (api.Response, error) {
	if err := m.load(ctx, id); err != nil {
		return nil, err
	}

	if slug == "" {
		return m.renderer.Redirect(m.firstIncompleteStep(), m)
	}

	step, err := m.resolveStep(slug)
	if err != nil {
		return nil, err
	}

	if !m.stepCanBeEdited(step) {
		return m.renderer.Redirect(m.firstIncompleteStep(), m)
	}

	return m.renderStep(r, step)
}

// Store handles the first submission of a wizard that has no identity
// yet. A single-step wizard completes immediately.
func (m *Machine) Store(ctx context.Context, r *api.Request) (api.Response, error) {
	step, err := m.firstAvailableStep()
	if err != nil {
		return nil, err
	}
	m.current = 0

	result, err := step.Process(r, m.validator)
	if err != nil {
		return nil, err
	}
	if !result.Successful() {
		return m.renderer.RedirectWithError(step, m, result.Error())
	}

	if err := m.saveStepData(ctx, step, result.Payload()); err != nil {
		return nil, err
	}

	if m.isLastStep() {
		return m.finish(ctx, r, step)
	}

	return m.renderer.Redirect(m.availableSteps()[1], m)
}

// Update handles the submission of a step in an existing wizard.
func (m *Machine) Update(ctx context.Context, r *api.Request, id, slug string) (api.Response, error) {
	if err := m.load(ctx, id); err != nil {
		return nil, err
	}

	step, err := m.resolveStep(slug)
	if err != nil {
		return nil, err
	}

	if !m.stepCanBeEdited(step) {
		return nil, fmt.Errorf("%w: %q in wizard %q", api.ErrCannotUpdateStep, slug, m.def.Slug)
	}

	result, err := step.Process(r, m.validator)
	if err != nil {
		return nil, err
	}
	if !result.Successful() {
		return m.renderer.RedirectWithError(step, m, result.Error())
	}

	payload := m.invalidateDependentFields(result.Payload())
	if err := m.saveStepData(ctx, step, payload); err != nil {
		return nil, err
	}

	if m.isLastStep() {
		return m.finish(ctx, r, step)
	}

	return m.renderer.Redirect(m.nextStep(), m)
}

// Destroy deletes the wizard's persisted state after running the
// before-delete hook.
func (m *Machine) Destroy(ctx context.Context, r *api.Request, id string) (api.Response, error) {
	if err := m.load(ctx, id); err != nil {
		return nil, err
	}

	if m.def.BeforeDelete != nil {
		if err := m.def.BeforeDelete(ctx, r, m); err != nil {
			return nil, err
		}
	}

	if err := m.repo.DeleteWizard(ctx, m); err != nil {
		return nil, err
	}

	if m.def.OnAfterDelete != nil {
		return m.def.OnAfterDelete(m), nil
	}
	return api.Redirect{URL: m.def.RedirectTo}, nil
}

// Summary returns a snapshot of the wizard's progress across its
// available steps.
func (m *Machine) Summary() api.Summary {
	available := m.availableSteps()
	steps := make([]api.StepSummary, len(available))
	for i, step := range available {
		url := ""
		if m.Exists() {
			url = fmt.Sprintf("%s/%s/%s/%s", m.def.URLPrefix, m.def.Slug, m.id, step.Slug())
		}
		steps[i] = api.StepSummary{
			Slug:     step.Slug(),
			Title:    step.Title(),
			Complete: step.IsComplete(),
			Active:   i == m.current,
			URL:      url,
		}
	}
	return api.Summary{
		ID:    m.id,
		Slug:  m.def.Slug,
		Title: m.def.Title,
		Steps: steps,
	}
}

// finish runs the completion sequence: reload persisted data, notify
// Finishing, execute the completion action, and only on success run the
// after-complete hook and notify Finished. On action failure the wizard
// stays persisted so the submission can be retried.
func (m *Machine) finish(ctx context.Context, r *api.Request, step *api.Step) (api.Response, error) {
	if err := m.load(ctx, m.id); err != nil {
		return nil, err
	}

	m.observer.OnWizardFinishing(ctx, m)

	action, err := m.completionAction()
	if err != nil {
		return nil, err
	}

	result := action.Execute(ctx, m.transformData(r))
	if !result.Successful() {
		return m.renderer.RedirectWithError(step, m, result.Error())
	}

	var response api.Response
	if m.def.OnAfterComplete != nil {
		response = m.def.OnAfterComplete(m, result)
	} else {
		response = api.Redirect{URL: m.def.RedirectTo}
	}

	m.observer.OnWizardFinished(ctx, m)

	return response, nil
}

func (m *Machine) completionAction() (api.Action, error) {
	if m.def.OnCompleteAction == "" {
		return api.NullAction{}, nil
	}
	return m.resolver.Resolve(m.def.OnCompleteAction)
}

func (m *Machine) transformData(r *api.Request) any {
	if m.def.TransformData != nil {
		return m.def.TransformData(r, m)
	}
	return m.AllData()
}

// load adopts the given identity and pulls the persisted data for it.
func (m *Machine) load(ctx context.Context, id string) error {
	m.id = id

	data, err := m.repo.LoadData(ctx, m)
	if err != nil {
		return err
	}
	m.data = data

	m.observer.OnWizardLoaded(ctx, m)

	return nil
}

// saveStepData persists a successful submission. The step's completion
// flag is merged into the payload's completion-state map so that the
// submission and any invalidation writes reach the repository in a single
// save.
func (m *Machine) saveStepData(ctx context.Context, step *api.Step, data map[string]any) error {
	m.observer.OnWizardSaving(ctx, m)

	state := map[string]any{}
	if stored, ok := m.data[api.StateKey].(map[string]any); ok {
		for slug, flag := range stored {
			state[slug] = flag
		}
	}
	state[step.Slug()] = true
	if submitted, ok := data[api.StateKey].(map[string]any); ok {
		for slug, flag := range submitted {
			state[slug] = flag
		}
	}
	data[api.StateKey] = state

	return m.repo.SaveData(ctx, m, data)
}

// invalidateDependentFields clears every field whose declared dependencies
// changed in this submission, and marks the owning steps incomplete. The
// writes are folded into the payload so they persist together with the
// submission itself.
func (m *Machine) invalidateDependentFields(payload map[string]any) map[string]any {
	var changed []string
	for key, value := range payload {
		if !sameValue(m.Data(key, nil), value) {
			changed = append(changed, key)
		}
	}

	var invalidatedSteps []string
	var invalidatedFields []string
	seenFields := map[string]struct{}{}

	for _, step := range m.availableSteps() {
		hit := false
		for _, field := range step.DependentFields() {
			if !field.ShouldInvalidate(changed) {
				continue
			}
			hit = true
			if _, dup := seenFields[field.Name]; !dup {
				seenFields[field.Name] = struct{}{}
				invalidatedFields = append(invalidatedFields, field.Name)
			}
		}
		if hit {
			invalidatedSteps = append(invalidatedSteps, step.Slug())
		}
	}

	if len(invalidatedSteps) > 0 {
		state, ok := payload[api.StateKey].(map[string]any)
		if !ok {
			state = map[string]any{}
		}
		for _, slug := range invalidatedSteps {
			state[slug] = nil
		}
		payload[api.StateKey] = state
	}
	for _, name := range invalidatedFields {
		payload[name] = nil
	}

	return payload
}

// sameValue compares a submitted value against its stored counterpart.
// Stored values have been through a JSON round trip, so the comparison
// happens on the encoded forms: a resubmitted int(5) matches the stored
// float64(5).
func sameValue(stored, submitted any) bool {
	a, aErr := json.Marshal(stored)
	b, bErr := json.Marshal(submitted)
	if aErr != nil || bErr != nil {
		return reflect.DeepEqual(stored, submitted)
	}
	return bytes.Equal(a, b)
}

func (m *Machine) renderStep(r *api.Request, step *api.Step) (api.Response, error) {
	data := step.ViewData(r)
	if m.def.SharedData != nil {
		for key, value := range m.def.SharedData(r, m) {
			data[key] = value
		}
	}
	return m.renderer.RenderStep(step, m, data)
}

// resolveStep finds a step by slug among all configured steps, omitted
// ones included, and moves the cursor to its position in the available
// list.
func (m *Machine) resolveStep(slug string) (*api.Step, error) {
	for _, step := range m.steps {
		if step.Slug() == slug {
			m.current = m.availableIndex(step)
			return step, nil
		}
	}
	return nil, fmt.Errorf("%w: no step with slug %q in wizard %q", api.ErrUnknownStep, slug, m.def.Slug)
}

// availableIndex maps a step to its position in the available list. An
// omitted step maps to the slot of the next available step after it,
// clamped so that a trailing omitted step counts as the last one.
func (m *Machine) availableIndex(step *api.Step) int {
	index := 0
	for _, candidate := range m.availableSteps() {
		if candidate.Index() >= step.Index() {
			break
		}
		index++
	}
	if max := len(m.availableSteps()) - 1; index > max {
		index = max
	}
	return index
}

func (m *Machine) availableSteps() []*api.Step {
	if m.available == nil {
		available := make([]*api.Step, 0, len(m.steps))
		for _, step := range m.steps {
			if !step.Omit() {
				available = append(available, step)
			}
		}
		m.available = available
	}
	return m.available
}

func (m *Machine) firstAvailableStep() (*api.Step, error) {
	available := m.availableSteps()
	if len(available) == 0 {
		return nil, fmt.Errorf("wizard %q has no available steps", m.def.Slug)
	}
	return available[0], nil
}

func (m *Machine) firstIncompleteStep() *api.Step {
	available := m.availableSteps()
	for _, step := range available {
		if !step.IsComplete() {
			return step
		}
	}
	// Stored data can make every step omit itself. Fall back to the last
	// configured step so navigation still lands somewhere.
	if len(available) == 0 {
		return m.steps[len(m.steps)-1]
	}
	return available[len(available)-1]
}

func (m *Machine) nextStep() *api.Step {
	return m.availableSteps()[m.current+1]
}

func (m *Machine) isLastStep() bool {
	return m.current+1 == len(m.availableSteps())
}

// stepCanBeEdited enforces the navigation policy: completed steps can be
// revisited, the first incomplete step is the only incomplete one that
// accepts input, and an omitted step is reachable only when it is the
// terminal configured step and everything before it is done.
func (m *Machine) stepCanBeEdited(step *api.Step) bool {
	if step.IsComplete() {
		return true
	}
	if step.Omit() {
		if step.Index() != len(m.steps)-1 {
			return false
		}
		for _, candidate := range m.availableSteps() {
			if !candidate.IsComplete() {
				return false
			}
		}
		return true
	}
	return step.Slug() == m.firstIncompleteStep().Slug()
}
