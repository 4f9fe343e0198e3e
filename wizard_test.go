package wizard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/petrijr/wizard"
)

func checkoutDefinition() wizard.Definition {
	return wizard.New("checkout").
		Title("Checkout").
		Step(wizard.NewStep("shipping", wizard.WithFields(
			wizard.NewField("street").WithRules("required"),
		))).
		Step(wizard.NewStep("payment", wizard.WithFields(
			wizard.NewField("card").WithRules("required"),
		))).
		OnComplete("place-order").
		RedirectTo("/orders").
		Definition()
}

func TestWizard_EndToEnd(t *testing.T) {
	ctx := context.Background()
	def := checkoutDefinition()

	repo := wizard.NewMemoryRepository()
	renderer := wizard.NewFakeRenderer()
	metrics := &wizard.BasicMetrics{}

	var ordered map[string]any
	resolver := wizard.NewRegistryResolver().
		Register("place-order", wizard.ActionFunc(func(ctx context.Context, payload any) wizard.ActionResult {
			ordered, _ = payload.(map[string]any)
			return wizard.ActionSuccess(map[string]any{"order_id": "42"})
		}))

	cfg := wizard.Config{
		Repository: repo,
		Renderer:   renderer,
		Resolver:   resolver,
		Observer: wizard.NewCompositeObserver(
			metrics,
			&wizard.RemoveCompletedObserver{Repository: repo},
		),
	}

	first, err := wizard.NewWizard(def, cfg)
	if err != nil {
		t.Fatalf("NewWizard failed: %v", err)
	}
	if _, err := first.Store(ctx, wizard.NewRequest(map[string]any{"street": "Main St 1"})); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	id := first.ID()
	if id == "" {
		t.Fatalf("expected an id after Store")
	}

	second, err := wizard.NewWizard(def, cfg)
	if err != nil {
		t.Fatalf("NewWizard failed: %v", err)
	}
	resp, err := second.Update(ctx, wizard.NewRequest(map[string]any{"card": "4111"}), id, "payment")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if redirect, ok := resp.(wizard.Redirect); !ok || redirect.URL != "/orders" {
		t.Fatalf("expected the completion redirect, got %v", resp)
	}

	if ordered["street"] != "Main St 1" || ordered["card"] != "4111" {
		t.Fatalf("action payload incomplete: %+v", ordered)
	}

	// The RemoveCompletedObserver dropped the record after completion.
	check, err := wizard.NewWizard(def, cfg)
	if err != nil {
		t.Fatalf("NewWizard failed: %v", err)
	}
	if _, err := check.Show(ctx, wizard.NewRequest(nil), id, "shipping"); !errors.Is(err, wizard.ErrWizardNotFound) {
		t.Fatalf("expected the completed wizard deleted, got %v", err)
	}

	snap := metrics.Snapshot()
	if snap.Finished != 1 || snap.Finishing != 1 {
		t.Fatalf("unexpected metrics: %+v", snap)
	}
}

func TestWizard_SessionBackedFlow(t *testing.T) {
	ctx := context.Background()

	def := wizard.New("preferences").
		Step(wizard.NewStep("display", wizard.WithFields(
			wizard.NewField("theme").WithRules("required"),
		))).
		Step(wizard.NewStep("locale", wizard.WithFields(
			wizard.NewField("language").WithRules("required"),
		))).
		Definition()

	session := wizard.NewMemorySession()
	cfg := wizard.Config{
		Repository: wizard.NewSessionRepository(session, ""),
		Renderer:   wizard.NewFakeRenderer(),
	}

	first, err := wizard.NewWizard(def, cfg)
	if err != nil {
		t.Fatalf("NewWizard failed: %v", err)
	}
	if _, err := first.Store(ctx, wizard.NewRequest(map[string]any{"theme": "dark"})); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	id := first.ID()

	second, err := wizard.NewWizard(def, cfg)
	if err != nil {
		t.Fatalf("NewWizard failed: %v", err)
	}
	if _, err := second.Show(ctx, wizard.NewRequest(nil), id, "display"); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if second.Data("theme", nil) != "dark" {
		t.Fatalf("session-backed data lost: %v", second.Data("theme", nil))
	}

	destroyer, err := wizard.NewWizard(def, cfg)
	if err != nil {
		t.Fatalf("NewWizard failed: %v", err)
	}
	if _, err := destroyer.Destroy(ctx, wizard.NewRequest(nil), id); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}

	check, err := wizard.NewWizard(def, cfg)
	if err != nil {
		t.Fatalf("NewWizard failed: %v", err)
	}
	if _, err := check.Show(ctx, wizard.NewRequest(nil), id, "display"); !errors.Is(err, wizard.ErrWizardNotFound) {
		t.Fatalf("expected the record gone after Destroy, got %v", err)
	}
}

func TestNewWizard_InvalidDefinition(t *testing.T) {
	_, err := wizard.NewWizard(wizard.Definition{Slug: "empty"}, wizard.Config{
		Repository: wizard.NewMemoryRepository(),
		Renderer:   wizard.NewFakeRenderer(),
	})
	if err == nil {
		t.Fatalf("expected an error for a wizard without steps")
	}
}
