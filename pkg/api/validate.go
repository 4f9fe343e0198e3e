package api

import (
	"fmt"
	"sort"
	"strings"
)

// Validator checks a submitted payload against a step's rules and returns
// the validated data, keyed by rule key. The wizard core only relies on the
// pass/fail contract; applications are expected to plug in a validator that
// understands their full rule syntax.
type Validator interface {
	Validate(payload map[string]any, rules map[string]Ruleset) (map[string]any, error)
}

// ValidationError carries per-field validation messages. It is surfaced to
// the caller as a structured error rather than a redirect, so the HTTP
// layer can render it however it likes.
type ValidationError struct {
	Errors map[string][]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed for fields: %s", strings.Join(fields, ", "))
}

// RuleValidator is the built-in validator. It understands only two rule
// tokens: "required" rejects missing or blank values, and "nullable"
// accepts anything. All other tokens pass; replace it with your own
// Validator if you need real rule evaluation.
type RuleValidator struct{}

var _ Validator = RuleValidator{}

func (RuleValidator) Validate(payload map[string]any, rules map[string]Ruleset) (map[string]any, error) {
	validated := make(map[string]any, len(rules))
	failures := map[string][]string{}

	for key, ruleset := range rules {
		value := DataGet(payload, key, nil)
		if containsRule(ruleset, "required") && isBlank(value) {
			failures[key] = append(failures[key], fmt.Sprintf("the %s field is required", key))
			continue
		}
		if value != nil {
			validated[key] = value
		}
	}

	if len(failures) > 0 {
		return nil, &ValidationError{Errors: failures}
	}
	return validated, nil
}

func containsRule(rules Ruleset, token string) bool {
	for _, rule := range rules {
		if rule == token {
			return true
		}
	}
	return false
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}
