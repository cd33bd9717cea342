package merchant

import (
	"fmt"
	"sort"
	"strings"
)

// Well-known selector keys. button.add and button.checkout are required: a
// storefront missing either cannot be automated at all.
const (
	KeyButtonAdd      = "button.add"
	KeyButtonCheckout = "button.checkout"
	KeyButtonViewCart = "button.viewCart"
	KeyFieldName      = "field.name"
	KeyFieldPhone     = "field.phone"
	KeyFieldTime      = "field.time"
)

const itemKeyPrefix = "item."

// ItemKey builds the selector key for a canonical item token.
func ItemKey(canonical string) string {
	return itemKeyPrefix + canonical
}

// SizeKey builds the selector key for a canonical size token.
func SizeKey(canonical string) string {
	return "size." + canonical
}

// ModifierKey builds the selector key for a canonical modifier token.
func ModifierKey(canonical string) string {
	return "modifier." + canonical
}

// CanonicalFromItemKey strips the item prefix from a selector key.
func CanonicalFromItemKey(key string) string {
	return strings.TrimPrefix(key, itemKeyPrefix)
}

// MissingSelectorError is the hard-stop configuration fault: a selector the
// caller marked as required is absent from the config.
type MissingSelectorError struct {
	Key string
}

func (e *MissingSelectorError) Error() string {
	return fmt.Sprintf("missing selector for %q", e.Key)
}

// Selector returns the locator for key, failing with MissingSelectorError
// when it is absent. Call this only for keys that must exist at the call
// site; optional keys are probed with Lookup first and skipped with a log
// line instead.
func (c *Config) Selector(key string) (string, error) {
	locator, ok := c.Lookup(key)
	if !ok {
		return "", &MissingSelectorError{Key: key}
	}
	return locator, nil
}

// Lookup probes the selector map without failing.
func (c *Config) Lookup(key string) (string, bool) {
	locator, ok := c.Selectors[key]
	if !ok || strings.TrimSpace(locator) == "" {
		return "", false
	}
	return locator, true
}

// ItemSelectorNames returns the canonical names carved out of configured
// item.* selector keys, sorted for deterministic iteration.
func (c *Config) ItemSelectorNames() []string {
	names := make([]string, 0, len(c.Selectors))
	for key := range c.Selectors {
		if strings.HasPrefix(key, itemKeyPrefix) {
			names = append(names, CanonicalFromItemKey(key))
		}
	}
	sort.Strings(names)
	return names
}

// Validate reports the required keys a config is missing. An empty result
// means the config is complete enough for the engine to drive it end to end.
func (c *Config) Validate() []string {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, "baseUrl")
	}
	if len(c.Selectors) == 0 {
		missing = append(missing, "selectors")
	}
	for _, key := range []string{KeyButtonAdd, KeyButtonCheckout, KeyFieldName, KeyFieldPhone, KeyFieldTime} {
		if _, ok := c.Lookup(key); !ok {
			missing = append(missing, "selectors."+key)
		}
	}
	if len(c.ItemSelectorNames()) == 0 {
		missing = append(missing, "selectors.item.<your-item>")
	}
	return missing
}
