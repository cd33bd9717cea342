package plan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseJSON(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"items": [{"name": "latte", "size": "large", "modifiers": ["oat milk"], "qty": 2}],
		"fulfillment": {"type": "pickup", "time": "13:15"},
		"customer": {"name": "Dana", "phone": "555-0147"}
	}`)

	p, err := Parse(raw, ".json")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(p.Items) != 1 || p.Items[0].Name != "latte" || p.Items[0].Qty != 2 {
		t.Fatalf("items = %+v", p.Items)
	}
	if p.Fulfillment.Time != "13:15" || p.Customer.Phone != "555-0147" {
		t.Fatalf("plan = %+v", p)
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	raw := []byte(`
items:
  - name: latte
    modifiers: [oat milk]
fulfillment:
  type: pickup
`)

	p, err := Parse(raw, ".yml")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(p.Items) != 1 || p.Items[0].Modifiers[0] != "oat milk" {
		t.Fatalf("items = %+v", p.Items)
	}
}

func TestParseRejectsEmptyPlan(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{"items": []}`), ".json"); err == nil {
		t.Fatal("Parse accepted a plan with no items")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(`{"items": [{"name": "latte"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Items[0].Name != "latte" {
		t.Fatalf("plan = %+v", p)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}
