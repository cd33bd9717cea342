package resolve

import (
	"strings"

	"github.com/asaply/orderflow/internal/merchant"
)

// Decision is the availability policy's verdict for one canonical modifier.
// Key is the modifier.* selector key to act on, empty when the modifier must
// be skipped. Fallback names the substitute that was used, if any.
type Decision struct {
	Key        string
	Fallback   string
	OutOfStock bool
}

// ApplyAvailability checks a canonical modifier against the out-of-stock set.
// In-stock modifiers pass through unchanged. Out-of-stock modifiers try the
// first configured substitution; when no substitute has a selector the
// modifier is skipped. The policy never fails: availability conflicts are
// always soft skips.
func ApplyAvailability(cfg *merchant.Config, modifier string) Decision {
	token := strings.ToLower(strings.TrimSpace(modifier))
	if token == "" {
		return Decision{}
	}

	if _, oos := cfg.OutOfStockSet()[token]; !oos {
		return Decision{Key: merchant.ModifierKey(token)}
	}

	substitutes := cfg.Availability.Substitutions[token]
	if len(substitutes) > 0 {
		fallback := strings.ToLower(strings.TrimSpace(substitutes[0]))
		if fallback != "" {
			if _, ok := cfg.Lookup(merchant.ModifierKey(fallback)); ok {
				return Decision{Key: merchant.ModifierKey(fallback), Fallback: fallback, OutOfStock: true}
			}
		}
	}
	return Decision{OutOfStock: true}
}
