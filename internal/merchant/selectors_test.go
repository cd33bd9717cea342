package merchant

import (
	"errors"
	"reflect"
	"testing"
)

func completeConfig() *Config {
	return &Config{
		Name:    "Cafe Test",
		BaseURL: "http://127.0.0.1:3000",
		Selectors: map[string]string{
			"item.latte":      "#item-latte",
			"item.croissant":  "#item-croissant",
			"button.add":      "#add",
			"button.checkout": "#checkout",
			"field.name":      "#name",
			"field.phone":     "#phone",
			"field.time":      "#time",
		},
	}
}

func TestSelectorKeys(t *testing.T) {
	t.Parallel()

	if got := ItemKey("latte"); got != "item.latte" {
		t.Fatalf("ItemKey = %q", got)
	}
	if got := SizeKey("large"); got != "size.large" {
		t.Fatalf("SizeKey = %q", got)
	}
	if got := ModifierKey("oat milk"); got != "modifier.oat milk" {
		t.Fatalf("ModifierKey = %q", got)
	}
	if got := CanonicalFromItemKey("item.latte"); got != "latte" {
		t.Fatalf("CanonicalFromItemKey = %q", got)
	}
}

func TestSelectorHardFailure(t *testing.T) {
	t.Parallel()

	cfg := completeConfig()

	locator, err := cfg.Selector("button.add")
	if err != nil || locator != "#add" {
		t.Fatalf("Selector(button.add) = %q, %v", locator, err)
	}

	_, err = cfg.Selector("button.viewCart")
	var missingErr *MissingSelectorError
	if !errors.As(err, &missingErr) {
		t.Fatalf("err = %v, want MissingSelectorError", err)
	}
	if missingErr.Key != "button.viewCart" {
		t.Fatalf("missing key = %q", missingErr.Key)
	}
}

func TestLookupTreatsBlankAsAbsent(t *testing.T) {
	t.Parallel()

	cfg := completeConfig()
	cfg.Selectors["size.large"] = "   "

	if _, ok := cfg.Lookup("size.large"); ok {
		t.Fatal("Lookup returned ok for a blank locator")
	}
	if _, ok := cfg.Lookup("item.latte"); !ok {
		t.Fatal("Lookup missed a configured key")
	}
}

func TestItemSelectorNames(t *testing.T) {
	t.Parallel()

	got := completeConfig().ItemSelectorNames()
	want := []string{"croissant", "latte"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ItemSelectorNames() = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if missing := completeConfig().Validate(); len(missing) != 0 {
		t.Fatalf("complete config reported missing keys: %v", missing)
	}

	cfg := &Config{}
	want := []string{
		"name",
		"baseUrl",
		"selectors",
		"selectors.button.add",
		"selectors.button.checkout",
		"selectors.field.name",
		"selectors.field.phone",
		"selectors.field.time",
		"selectors.item.<your-item>",
	}
	if got := cfg.Validate(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Validate() = %v, want %v", got, want)
	}
}

func TestValidateFlagsMissingItemSelectors(t *testing.T) {
	t.Parallel()

	cfg := completeConfig()
	delete(cfg.Selectors, "item.latte")
	delete(cfg.Selectors, "item.croissant")

	got := cfg.Validate()
	if !reflect.DeepEqual(got, []string{"selectors.item.<your-item>"}) {
		t.Fatalf("Validate() = %v", got)
	}
}
