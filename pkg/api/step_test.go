package api

import (
	"errors"
	"strings"
	"testing"
)

// stubContext is a data-backed StepContext for step tests.
type stubContext struct {
	id     string
	name   string
	exists bool
	data   map[string]any
}

func (c *stubContext) ID() string      { return c.id }
func (c *stubContext) SetID(id string) { c.id = id }
func (c *stubContext) Name() string    { return c.name }
func (c *stubContext) Exists() bool    { return c.exists }

func (c *stubContext) Data(key string, fallback any) any {
	return DataGet(c.data, key, fallback)
}

func (c *stubContext) AllData() map[string]any {
	all := map[string]any{}
	for key, value := range c.data {
		if key == StateKey {
			continue
		}
		all[key] = value
	}
	return all
}

func TestNewStep_PanicsOnEmptySlug(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for empty slug")
		}
	}()
	NewStep("")
}

func TestNewStep_TitleDefaultsToSlug(t *testing.T) {
	s := NewStep("shipping")
	if s.Title() != "shipping" {
		t.Fatalf("expected slug as default title, got %q", s.Title())
	}

	titled := NewStep("shipping", WithTitle("Shipping address"))
	if titled.Title() != "Shipping address" {
		t.Fatalf("WithTitle not applied: %q", titled.Title())
	}
}

func TestStep_InitReturnsBoundCopy(t *testing.T) {
	definition := NewStep("shipping")
	ctx := &stubContext{name: "checkout"}

	bound := definition.Init(ctx, 2)
	if bound == definition {
		t.Fatalf("Init must not bind the shared definition in place")
	}
	if bound.Index() != 2 {
		t.Fatalf("expected index 2, got %d", bound.Index())
	}
	if definition.Index() != 0 {
		t.Fatalf("shared definition mutated: index %d", definition.Index())
	}
}

func TestStep_RulesDerivedFromFields(t *testing.T) {
	s := NewStep("shipping", WithFields(
		NewField("street").WithRules("required"),
		NewField("note"),
	))

	rules := s.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rule entries, got %+v", rules)
	}
	if rules["street"][0] != "required" {
		t.Fatalf("unexpected street rules: %v", rules["street"])
	}
	if rules["note"][0] != "nullable" {
		t.Fatalf("unexpected note rules: %v", rules["note"])
	}
}

func TestStep_RulesOverride(t *testing.T) {
	s := NewStep("shipping",
		WithFields(NewField("street").WithRules("required")),
		WithRules(map[string]Ruleset{"street": {"nullable"}}),
	)

	rules := s.Rules()
	if rules["street"][0] != "nullable" {
		t.Fatalf("WithRules override lost: %v", rules["street"])
	}
}

func TestStep_DependentFields(t *testing.T) {
	region := NewField("region").DependsOn("country")
	s := NewStep("plan", WithFields(NewField("country"), region))

	dependent := s.DependentFields()
	if len(dependent) != 1 || dependent[0] != region {
		t.Fatalf("unexpected dependent fields: %+v", dependent)
	}
}

func TestStep_IsComplete(t *testing.T) {
	s := NewStep("shipping").Init(&stubContext{
		data: map[string]any{
			StateKey: map[string]any{"shipping": true},
		},
	}, 0)
	if !s.IsComplete() {
		t.Fatalf("expected step complete from state flag")
	}

	invalidated := NewStep("shipping").Init(&stubContext{
		data: map[string]any{
			StateKey: map[string]any{"shipping": nil},
		},
	}, 0)
	if invalidated.IsComplete() {
		t.Fatalf("an invalidated flag must read as incomplete")
	}

	fresh := NewStep("shipping").Init(&stubContext{}, 0)
	if fresh.IsComplete() {
		t.Fatalf("expected a fresh step to be incomplete")
	}
}

func TestStep_IsCompleteOverride(t *testing.T) {
	s := NewStep("profile", WithComplete(func(w StepContext) bool {
		return w.Data("email", nil) != nil
	})).Init(&stubContext{data: map[string]any{"email": "a@b.test"}}, 0)

	if !s.IsComplete() {
		t.Fatalf("expected the override to decide completeness")
	}
}

func TestStep_Omit(t *testing.T) {
	plain := NewStep("shipping").Init(&stubContext{}, 0)
	if plain.Omit() {
		t.Fatalf("steps are included by default")
	}

	omitted := NewStep("gift-wrap", WithOmit(func(w StepContext) bool {
		return w.Data("digital", false) == true
	})).Init(&stubContext{data: map[string]any{"digital": true}}, 0)
	if !omitted.Omit() {
		t.Fatalf("expected the predicate to omit the step")
	}
}

func TestStep_WithFormDataCollapsesNestedKeys(t *testing.T) {
	s := NewStep("shipping", WithFields(
		NewField("address.city").WithRules("required"),
		NewField("email"),
	)).Init(&stubContext{data: map[string]any{
		"address": map[string]any{"city": "Helsinki"},
		"email":   "a@b.test",
	}}, 0)

	data := s.WithFormData(map[string]any{"countries": []string{"FI", "SE"}})

	address, ok := data["address"].(map[string]any)
	if !ok || address["city"] != "Helsinki" {
		t.Fatalf("nested key not collapsed to root: %+v", data)
	}
	if data["email"] != "a@b.test" {
		t.Fatalf("flat key missing: %+v", data)
	}
	if _, ok := data["countries"]; !ok {
		t.Fatalf("extra data not merged: %+v", data)
	}
}

func TestStep_ViewDataDefault(t *testing.T) {
	s := NewStep("shipping", WithFields(NewField("email"))).
		Init(&stubContext{data: map[string]any{"email": "a@b.test"}}, 0)

	data := s.ViewData(NewRequest(nil))
	if data["email"] != "a@b.test" {
		t.Fatalf("default view data missing field value: %+v", data)
	}
}

func TestStep_ViewDataOverride(t *testing.T) {
	s := NewStep("shipping", WithViewData(func(r *Request, s *Step) map[string]any {
		return s.WithFormData(map[string]any{"custom": true})
	}), WithFields(NewField("email"))).
		Init(&stubContext{data: map[string]any{"email": "a@b.test"}}, 0)

	data := s.ViewData(NewRequest(nil))
	if data["custom"] != true || data["email"] != "a@b.test" {
		t.Fatalf("override did not extend the defaults: %+v", data)
	}
}

func TestStep_ProcessValidatesAndTransforms(t *testing.T) {
	s := NewStep("shipping", WithFields(
		NewField("street").WithRules("required").Transform(func(raw any) any {
			v, _ := raw.(string)
			return strings.TrimSpace(v)
		}),
	)).Init(&stubContext{}, 0)

	result, err := s.Process(NewRequest(map[string]any{"street": "  Main St 1  "}), RuleValidator{})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !result.Successful() {
		t.Fatalf("expected success, got %q", result.Error())
	}
	if result.Payload()["street"] != "Main St 1" {
		t.Fatalf("transform not applied: %+v", result.Payload())
	}
}

func TestStep_ProcessReturnsValidationError(t *testing.T) {
	s := NewStep("shipping", WithFields(
		NewField("street").WithRules("required"),
	)).Init(&stubContext{}, 0)

	_, err := s.Process(NewRequest(nil), RuleValidator{})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestStep_ProcessRunsHandler(t *testing.T) {
	s := NewStep("shipping",
		WithFields(NewField("street").WithRules("required")),
		WithHandler(func(r *Request, payload map[string]any) StepResult {
			return StepFailure("address rejected")
		}),
	).Init(&stubContext{}, 0)

	result, err := s.Process(NewRequest(map[string]any{"street": "Main St 1"}), RuleValidator{})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Successful() || result.Error() != "address rejected" {
		t.Fatalf("handler result lost: %+v", result)
	}
}
