package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plan is the caller's intent: an ordered list of items plus fulfillment and
// customer details. It is never mutated by the engine; resolution artifacts
// live in the execution outcome, not here.
type Plan struct {
	Items       []Item      `json:"items" yaml:"items"`
	Fulfillment Fulfillment `json:"fulfillment" yaml:"fulfillment"`
	Customer    Customer    `json:"customer" yaml:"customer"`
}

type Item struct {
	Name      string   `json:"name" yaml:"name"`
	Size      string   `json:"size,omitempty" yaml:"size,omitempty"`
	Modifiers []string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Qty       int      `json:"qty,omitempty" yaml:"qty,omitempty"`
}

type Fulfillment struct {
	Type string `json:"type" yaml:"type"`
	Time string `json:"time,omitempty" yaml:"time,omitempty"`
}

type Customer struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// Load reads a plan from a JSON or YAML file. The extension picks the codec;
// anything that is not .yaml/.yml is treated as JSON.
func Load(path string) (Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan %s: %w", path, err)
	}
	return Parse(raw, filepath.Ext(path))
}

// Parse decodes plan bytes. ext selects YAML for ".yaml"/".yml", JSON otherwise.
func Parse(raw []byte, ext string) (Plan, error) {
	var p Plan
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return Plan{}, fmt.Errorf("decode plan yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &p); err != nil {
			return Plan{}, fmt.Errorf("decode plan json: %w", err)
		}
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// Validate checks the minimal shape the engine needs. Item names may still be
// unresolvable; that is a per-item soft failure, not a plan error.
func (p Plan) Validate() error {
	if len(p.Items) == 0 {
		return errors.New("plan has no items")
	}
	return nil
}
