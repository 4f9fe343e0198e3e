package api

// Ruleset is an ordered list of validation rule tokens for a single field.
// The tokens are opaque to the wizard core; they are interpreted by whatever
// Validator the application plugs in. RuleValidator understands "required"
// and "nullable", which is enough for defaults and tests.
type Ruleset []string

// Field describes a single piece of submittable data in a step: how it is
// validated, which other fields it depends on, and an optional transform
// applied to the raw submitted value.
type Field struct {
	Name         string
	Rules        Ruleset
	Dependencies []string

	transform func(any) any
}

// NewField creates a field with the default "nullable" ruleset and no
// dependencies. Configuration is chained:
//
//	api.NewField("email").
//	    WithRules("required").
//	    DependsOn("account_type")
func NewField(name string) *Field {
	return &Field{
		Name:  name,
		Rules: Ruleset{"nullable"},
	}
}

// WithRules replaces the field's ruleset.
func (f *Field) WithRules(rules ...string) *Field {
	f.Rules = Ruleset(rules)
	return f
}

// DependsOn declares the fields whose change invalidates this field's
// stored value.
func (f *Field) DependsOn(fields ...string) *Field {
	f.Dependencies = fields
	return f
}

// Transform registers a callback that maps the raw submitted value to the
// value that gets stored. Without a transform the value passes through
// unchanged.
func (f *Field) Transform(fn func(any) any) *Field {
	f.transform = fn
	return f
}

// ShouldInvalidate reports whether any of the field's dependencies is in
// changed. A field without dependencies never invalidates.
func (f *Field) ShouldInvalidate(changed []string) bool {
	for _, dep := range f.Dependencies {
		for _, name := range changed {
			if dep == name {
				return true
			}
		}
	}
	return false
}

// Value applies the field's transform to a raw submitted value.
func (f *Field) Value(raw any) any {
	if f.transform == nil {
		return raw
	}
	return f.transform(raw)
}
