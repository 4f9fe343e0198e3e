package api

import "sync"

// Response is whatever the application's HTTP layer turns into an actual
// response: a rendered template, a JSON document, a redirect. The core
// never inspects it.
type Response any

// Redirect is the response the default lifecycle hooks produce: a plain
// redirect to a URL outside the wizard, typically Definition.RedirectTo.
type Redirect struct {
	URL string
}

// ResponseRenderer turns wizard decisions into responses. The core calls
// RenderStep to display a step, Redirect to move the user to another step,
// and RedirectWithError to send the user back to a step with a message.
type ResponseRenderer interface {
	RenderStep(step *Step, w Wizard, data map[string]any) (Response, error)
	Redirect(step *Step, w Wizard) (Response, error)
	RedirectWithError(step *Step, w Wizard, message string) (Response, error)
}

// FakeRenderer is a recording ResponseRenderer for tests. It remembers
// which steps were rendered with what data and where the wizard redirected.
type FakeRenderer struct {
	mu       sync.Mutex
	rendered map[string]map[string]any
	redirect string
	hasError bool
	errMsg   string
}

var _ ResponseRenderer = (*FakeRenderer)(nil)

func NewFakeRenderer() *FakeRenderer {
	return &FakeRenderer{rendered: map[string]map[string]any{}}
}

func (f *FakeRenderer) RenderStep(step *Step, w Wizard, data map[string]any) (Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rendered[step.Slug()] = data
	return Response("rendered:" + step.Slug()), nil
}

func (f *FakeRenderer) Redirect(step *Step, w Wizard) (Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.redirect = step.Slug()
	f.hasError = false
	f.errMsg = ""
	return Redirect{URL: "::url::"}, nil
}

func (f *FakeRenderer) RedirectWithError(step *Step, w Wizard, message string) (Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.redirect = step.Slug()
	f.hasError = true
	f.errMsg = message
	return Redirect{URL: "::url::"}, nil
}

// StepWasRendered reports whether the step was rendered. When data is
// non-nil, every given key/value must also appear in the rendered view data.
func (f *FakeRenderer) StepWasRendered(slug string, data map[string]any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	viewData, ok := f.rendered[slug]
	if !ok {
		return false
	}
	for key, want := range data {
		if got, ok := viewData[key]; !ok || got != want {
			return false
		}
	}
	return true
}

// DidRedirectTo reports whether the last redirect targeted the step without
// an error message.
func (f *FakeRenderer) DidRedirectTo(slug string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.redirect == slug && !f.hasError
}

// DidRedirectWithError reports whether the last redirect targeted the step
// carrying the given error message.
func (f *FakeRenderer) DidRedirectWithError(slug string, message string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.redirect == slug && f.hasError && f.errMsg == message
}
