package merchant

import (
	"reflect"
	"testing"
)

func TestParseJSON(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"name": "Cafe Test",
		"baseUrl": "http://127.0.0.1:3000",
		"selectors": {
			"item.latte": "#item-latte",
			"button.add": "#add"
		},
		"normalize": {"items": {"coffee": "latte"}},
		"availability": {"outOfStock": ["Oat Milk", " ", "whip"]}
	}`)

	cfg, err := Parse(raw, ".json")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.Name != "Cafe Test" || cfg.BaseURL != "http://127.0.0.1:3000" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Normalize.Items["coffee"] != "latte" {
		t.Fatalf("normalize table not decoded: %+v", cfg.Normalize)
	}

	want := map[string]struct{}{"oat milk": {}, "whip": {}}
	if got := cfg.OutOfStockSet(); !reflect.DeepEqual(got, want) {
		t.Fatalf("OutOfStockSet() = %v, want %v", got, want)
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	raw := []byte(`
name: Cafe Test
baseUrl: http://127.0.0.1:3000
selectors:
  item.latte: "#item-latte"
menu:
  items:
    - name: latte
      aliases: [coffee]
`)

	cfg, err := Parse(raw, ".yaml")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cfg.Menu.Items) != 1 || cfg.Menu.Items[0].Name != "latte" {
		t.Fatalf("menu not decoded: %+v", cfg.Menu)
	}
	if cfg.Selectors["item.latte"] != "#item-latte" {
		t.Fatalf("selectors not decoded: %+v", cfg.Selectors)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{not json`), ".json"); err == nil {
		t.Fatal("Parse accepted malformed JSON")
	}
}
