package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/asaply/orderflow/internal/merchant"
)

// verify reads the configured summary region once and asserts every resolved
// canonical item name, normalized size, and normalized modifier appears in it
// as a case-insensitive substring. The DOM is only read here, never mutated.
// With no summary selector configured the scan is skipped and the outcome is
// left unverified; the log contract still reports PASS when nothing else
// failed.
func (e *Engine) verify(ctx context.Context, cfg *merchant.Config, state *execState) error {
	locator := strings.TrimSpace(cfg.Verification.SummarySelector)
	if locator == "" {
		state.outcome.Verified = false
		return nil
	}

	text, err := e.page.TextContent(ctx, locator)
	if err != nil {
		return fmt.Errorf("read order summary: %w", err)
	}
	summary := strings.ToLower(text)

	for _, item := range state.resolved {
		if item.canonical != "" && !strings.Contains(summary, item.canonical) {
			e.logf(state, "[verify] Missing item '%s' in summary", item.canonical)
			state.outcome.Mismatches = append(state.outcome.Mismatches, fmt.Sprintf("missing item '%s' in summary", item.canonical))
		}
		if item.size != "" && !strings.Contains(summary, item.size) {
			e.logf(state, "[verify] Missing size '%s' in summary", item.size)
			state.outcome.Mismatches = append(state.outcome.Mismatches, fmt.Sprintf("missing size '%s' in summary", item.size))
		}
		for _, modifier := range item.modifiers {
			if modifier != "" && !strings.Contains(summary, modifier) {
				e.logf(state, "[verify] Missing modifier '%s' in summary", modifier)
				state.outcome.Mismatches = append(state.outcome.Mismatches, fmt.Sprintf("missing modifier '%s' in summary", modifier))
			}
		}
	}

	state.outcome.Verified = true
	return nil
}
