package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/asaply/orderflow/internal/merchant"
	"github.com/asaply/orderflow/internal/plan"
	"github.com/asaply/orderflow/internal/resolve"
)

// Last-resort checkout values, used when neither the plan nor the merchant
// defaults supply one.
const (
	fallbackName  = "Guest"
	fallbackPhone = "555-0101"
	fallbackTime  = "12:30"
)

// Engine drives one storefront session through an order plan. Items are
// processed strictly in sequence: storefront carts are single-session state
// machines and concurrent adds would race on shared cart state.
type Engine struct {
	page   Page
	logger *log.Logger
}

// New builds an engine over page. logger, when non-nil, mirrors every
// execution log line; the lines are also collected on the Outcome.
func New(page Page, logger *log.Logger) *Engine {
	return &Engine{page: page, logger: logger}
}

// resolvedItem carries the canonical tokens of one successfully resolved plan
// item, kept side-by-side with the immutable plan for verification.
type resolvedItem struct {
	canonical string
	size      string
	modifiers []string
}

type execState struct {
	outcome  Outcome
	resolved []resolvedItem
}

// Execute runs the full plan against cfg: add every item to the cart, reach
// checkout, fill the checkout form, then verify the order summary. Item-level
// problems (unresolvable names, missing optional selectors, availability
// conflicts) are absorbed into the outcome and never abort the run; only a
// missing required selector or a driver fault returns an error. The partially
// built outcome accompanies the error so callers keep the log.
func (e *Engine) Execute(ctx context.Context, cfg *merchant.Config, p plan.Plan) (Outcome, error) {
	state := &execState{}

	for _, item := range p.Items {
		if err := e.addItem(ctx, cfg, item, state); err != nil {
			return state.outcome, err
		}
	}

	if locator, ok := cfg.Lookup(merchant.KeyButtonViewCart); ok {
		if err := e.page.Click(ctx, locator); err != nil {
			return state.outcome, fmt.Errorf("click %s: %w", merchant.KeyButtonViewCart, err)
		}
	}
	checkoutLocator, err := cfg.Selector(merchant.KeyButtonCheckout)
	if err != nil {
		return state.outcome, err
	}
	if err := e.page.Click(ctx, checkoutLocator); err != nil {
		return state.outcome, fmt.Errorf("click %s: %w", merchant.KeyButtonCheckout, err)
	}

	if err := e.fillCheckout(ctx, cfg, p, state); err != nil {
		return state.outcome, err
	}

	if err := e.verify(ctx, cfg, state); err != nil {
		return state.outcome, err
	}

	e.finish(state)
	return state.outcome, nil
}

func (e *Engine) addItem(ctx context.Context, cfg *merchant.Config, item plan.Item, state *execState) error {
	resolution := resolve.ResolveItem(cfg, item.Name)
	if !resolution.Resolved() {
		e.logf(state, "[executor] Could not find a button for %q. Check config.normalize.items or menu.aliases.", item.Name)
		if len(resolution.Suggestions) > 0 {
			e.logf(state, "[suggest] NOT_FOUND: %q → did you mean: %s ?", item.Name, strings.Join(resolution.Suggestions, ", "))
		}
		state.outcome.MissingItems = append(state.outcome.MissingItems, MissingItem{
			Asked:       item.Name,
			Suggestions: resolution.Suggestions,
		})
		return nil
	}

	canonical := resolution.Canonical()
	size := resolve.Normalize(item.Size, cfg.Normalize.Sizes)
	modifiers := make([]string, 0, len(item.Modifiers))
	for _, raw := range item.Modifiers {
		if normalized := resolve.Normalize(raw, cfg.Normalize.Modifiers); normalized != "" {
			modifiers = append(modifiers, normalized)
		}
	}

	e.logf(state, "[executor] Add %s", renderAddLine(canonical, size, modifiers))

	itemLocator, err := cfg.Selector(resolution.Key)
	if err != nil {
		return err
	}
	if err := e.page.Click(ctx, itemLocator); err != nil {
		return fmt.Errorf("click %s: %w", resolution.Key, err)
	}

	if size != "" {
		if locator, ok := cfg.Lookup(merchant.SizeKey(size)); ok {
			if err := e.page.Click(ctx, locator); err != nil {
				return fmt.Errorf("click %s: %w", merchant.SizeKey(size), err)
			}
		} else {
			e.logf(state, "[executor] No selector for size '%s', skipping size click", size)
		}
	}

	for _, modifier := range modifiers {
		if err := e.applyModifier(ctx, cfg, modifier, state); err != nil {
			return err
		}
	}

	addLocator, err := cfg.Selector(merchant.KeyButtonAdd)
	if err != nil {
		return err
	}
	if err := e.page.Click(ctx, addLocator); err != nil {
		return fmt.Errorf("click %s: %w", merchant.KeyButtonAdd, err)
	}

	state.resolved = append(state.resolved, resolvedItem{
		canonical: canonical,
		size:      size,
		modifiers: modifiers,
	})
	return nil
}

func (e *Engine) applyModifier(ctx context.Context, cfg *merchant.Config, modifier string, state *execState) error {
	decision := resolve.ApplyAvailability(cfg, modifier)
	switch {
	case decision.OutOfStock && decision.Key != "":
		e.logf(state, "[executor] '%s' OOS → using '%s'", modifier, decision.Fallback)
	case decision.OutOfStock:
		e.logf(state, "[executor] '%s' OOS and no substitution; skipping", modifier)
		return nil
	default:
		if _, ok := cfg.Lookup(decision.Key); !ok {
			e.logf(state, "[executor] No selector for modifier '%s', skipping", modifier)
			return nil
		}
	}

	locator, err := cfg.Selector(decision.Key)
	if err != nil {
		return err
	}
	if err := e.page.Click(ctx, locator); err != nil {
		return fmt.Errorf("click %s: %w", decision.Key, err)
	}
	return nil
}

func (e *Engine) fillCheckout(ctx context.Context, cfg *merchant.Config, p plan.Plan, state *execState) error {
	fills := []struct {
		fieldKey string
		value    string
	}{
		{cfg.Checkout.Fields.Name, firstNonEmpty(p.Customer.Name, cfg.Checkout.Defaults.Name, fallbackName)},
		{cfg.Checkout.Fields.Phone, firstNonEmpty(p.Customer.Phone, cfg.Checkout.Defaults.Phone, fallbackPhone)},
		{cfg.Checkout.Fields.Time, firstNonEmpty(p.Fulfillment.Time, cfg.Checkout.Defaults.Time, fallbackTime)},
	}

	for _, fill := range fills {
		if strings.TrimSpace(fill.fieldKey) == "" {
			continue
		}
		locator, err := cfg.Selector(fill.fieldKey)
		if err != nil {
			return err
		}
		if err := e.page.Fill(ctx, locator, fill.value); err != nil {
			return fmt.Errorf("fill %s: %w", fill.fieldKey, err)
		}
	}
	return nil
}

// finish derives the final PASS/FAIL, emits the terminal log lines, and
// renders per-item suggestion diagnostics for everything that went missing.
func (e *Engine) finish(state *execState) {
	state.outcome.OK = len(state.outcome.Mismatches) == 0 && len(state.outcome.MissingItems) == 0

	if state.outcome.OK {
		e.logf(state, "[verify] RESULT: PASS")
		return
	}

	e.logf(state, "[verify] RESULT: FAIL")
	for _, missing := range state.outcome.MissingItems {
		if len(missing.Suggestions) > 0 {
			e.logf(state, "[suggest] ITEM_NOT_FOUND: %q → suggestions: %s", missing.Asked, strings.Join(missing.Suggestions, ", "))
		} else {
			e.logf(state, "[suggest] ITEM_NOT_FOUND: %q → suggestions: none", missing.Asked)
		}
	}
}

func (e *Engine) logf(state *execState, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	state.outcome.Log = append(state.outcome.Log, line)
	if e.logger != nil {
		e.logger.Print(line)
	}
}

func renderAddLine(canonical, size string, modifiers []string) string {
	var b strings.Builder
	if size != "" {
		b.WriteString(size)
		b.WriteString(" ")
	}
	b.WriteString(canonical)
	if len(modifiers) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(modifiers, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
