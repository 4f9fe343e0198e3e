package api

import (
	"errors"
	"testing"
)

func TestRuleValidator_PassesValidPayload(t *testing.T) {
	v := RuleValidator{}

	validated, err := v.Validate(
		map[string]any{"email": "a@b.test", "note": nil, "extra": "ignored"},
		map[string]Ruleset{
			"email": {"required"},
			"note":  {"nullable"},
		},
	)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if validated["email"] != "a@b.test" {
		t.Fatalf("validated data missing email: %+v", validated)
	}
	if _, ok := validated["note"]; ok {
		t.Fatalf("nil value must not appear in validated data: %+v", validated)
	}
	if _, ok := validated["extra"]; ok {
		t.Fatalf("keys without rules must be dropped: %+v", validated)
	}
}

func TestRuleValidator_RequiredRejectsMissingAndBlank(t *testing.T) {
	v := RuleValidator{}
	rules := map[string]Ruleset{"email": {"required"}}

	for name, payload := range map[string]map[string]any{
		"missing": {},
		"nil":     {"email": nil},
		"blank":   {"email": "   "},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Validate(payload, rules)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Errors["email"]) == 0 {
				t.Fatalf("expected a message for email: %+v", verr.Errors)
			}
		})
	}
}

func TestRuleValidator_NestedKeys(t *testing.T) {
	v := RuleValidator{}

	validated, err := v.Validate(
		map[string]any{"address": map[string]any{"city": "Helsinki"}},
		map[string]Ruleset{"address.city": {"required"}},
	)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if validated["address.city"] != "Helsinki" {
		t.Fatalf("nested value not validated: %+v", validated)
	}
}

func TestValidationError_ListsFieldsSorted(t *testing.T) {
	err := &ValidationError{Errors: map[string][]string{
		"zeta":  {"bad"},
		"alpha": {"bad"},
	}}

	want := "validation failed for fields: alpha, zeta"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
