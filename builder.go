package wizard

import (
	"context"
	"fmt"

	"github.com/petrijr/wizard/pkg/api"
)

// Builder provides a fluent API for defining wizards:
//
//	def := wizard.New("checkout").
//	    Title("Checkout").
//	    Step(wizard.NewStep("shipping", wizard.WithFields(
//	        wizard.NewField("street").WithRules("required"),
//	    ))).
//	    Step(wizard.NewStep("payment", wizard.WithFields(
//	        wizard.NewField("card").WithRules("required"),
//	    ))).
//	    OnComplete("place-order").
//	    Definition()
//
//	w, err := wizard.NewWizard(def, wizard.Config{
//	    Repository: repo,
//	    Renderer:   renderer,
//	})
type Builder struct {
	def api.Definition
}

// New creates a new wizard builder with the given slug.
func New(slug string) *Builder {
	if slug == "" {
		panic("wizard: slug must not be empty")
	}
	return &Builder{
		def: api.Definition{
			Slug:  slug,
			Steps: make([]*api.Step, 0),
		},
	}
}

// Slug returns the wizard type identifier.
func (b *Builder) Slug() string {
	return b.def.Slug
}

// Definition returns the built Definition. It is immutable from the
// machine's point of view and can be shared between requests.
func (b *Builder) Definition() Definition {
	return b.def
}

// Title sets the wizard's display name.
func (b *Builder) Title(title string) *Builder {
	b.def.Title = title
	return b
}

// Description sets the text shown wherever wizards are listed.
func (b *Builder) Description(description string) *Builder {
	b.def.Description = description
	return b
}

// Step appends a step to the wizard.
func (b *Builder) Step(step *Step) *Builder {
	if step == nil {
		panic(fmt.Sprintf("wizard: %q has a nil step", b.def.Slug))
	}
	b.def.Steps = append(b.def.Steps, step)
	return b
}

// Steps appends several steps in order.
func (b *Builder) Steps(steps ...*Step) *Builder {
	for _, step := range steps {
		b.Step(step)
	}
	return b
}

// OnComplete sets the resolver identifier of the action that runs after
// the last step.
func (b *Builder) OnComplete(action string) *Builder {
	b.def.OnCompleteAction = action
	return b
}

// RedirectTo sets the URL the default hooks redirect to after completion
// or deletion.
func (b *Builder) RedirectTo(url string) *Builder {
	b.def.RedirectTo = url
	return b
}

// URLPrefix sets the path prefix step URLs in summaries are built under.
func (b *Builder) URLPrefix(prefix string) *Builder {
	b.def.URLPrefix = prefix
	return b
}

// TransformData sets the function that shapes the accumulated data into
// the completion action's payload.
func (b *Builder) TransformData(fn func(r *Request, w Wizard) any) *Builder {
	b.def.TransformData = fn
	return b
}

// SharedData sets the function whose result is merged into every step's
// view data.
func (b *Builder) SharedData(fn func(r *Request, w Wizard) map[string]any) *Builder {
	b.def.SharedData = fn
	return b
}

// OnAfterComplete sets the hook that builds the response after a
// successful completion action.
func (b *Builder) OnAfterComplete(fn func(w Wizard, result ActionResult) Response) *Builder {
	b.def.OnAfterComplete = fn
	return b
}

// BeforeDelete sets the hook that runs before the wizard's record is
// deleted. Returning an error aborts the deletion.
func (b *Builder) BeforeDelete(fn func(ctx context.Context, r *Request, w Wizard) error) *Builder {
	b.def.BeforeDelete = fn
	return b
}

// OnAfterDelete sets the hook that builds the response after deletion.
func (b *Builder) OnAfterDelete(fn func(w Wizard) Response) *Builder {
	b.def.OnAfterDelete = fn
	return b
}

// Build binds the Definition into a wizard instance with the given
// collaborators. Shorthand for NewWizard(b.Definition(), cfg).
func (b *Builder) Build(cfg Config) (Wizard, error) {
	return NewWizard(b.def, cfg)
}

// MustBuild is like Build but panics on error.
// Useful for initialization in main().
func (b *Builder) MustBuild(cfg Config) Wizard {
	w, err := b.Build(cfg)
	if err != nil {
		panic(err)
	}
	return w
}
