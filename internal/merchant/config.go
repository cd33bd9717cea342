package merchant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the declarative description of one storefront: a flat selector
// map keyed by a dotted namespace, normalization tables, the canonical menu
// catalog, availability rules, and checkout wiring. It is read-only for the
// duration of one execution.
type Config struct {
	ID           string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string            `json:"name" yaml:"name"`
	BaseURL      string            `json:"baseUrl" yaml:"baseUrl"`
	Selectors    map[string]string `json:"selectors" yaml:"selectors"`
	Normalize    Normalize         `json:"normalize,omitempty" yaml:"normalize,omitempty"`
	Menu         Menu              `json:"menu,omitempty" yaml:"menu,omitempty"`
	Availability Availability      `json:"availability,omitempty" yaml:"availability,omitempty"`
	Verification Verification      `json:"verification,omitempty" yaml:"verification,omitempty"`
	Checkout     Checkout          `json:"checkout,omitempty" yaml:"checkout,omitempty"`
}

// Normalize maps lower-cased raw tokens to canonical tokens, one table per
// token class. Applied before any selector lookup.
type Normalize struct {
	Items     map[string]string `json:"items,omitempty" yaml:"items,omitempty"`
	Sizes     map[string]string `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	Modifiers map[string]string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
}

type Menu struct {
	Items []MenuItem `json:"items,omitempty" yaml:"items,omitempty"`
}

// MenuItem is a canonical catalog entry. Aliases match case-insensitively
// during resolution when the normalize table and direct key lookup both miss.
type MenuItem struct {
	Name    string   `json:"name" yaml:"name"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

type Availability struct {
	OutOfStock    []string            `json:"outOfStock,omitempty" yaml:"outOfStock,omitempty"`
	Substitutions map[string][]string `json:"substitutions,omitempty" yaml:"substitutions,omitempty"`
}

type Verification struct {
	SummarySelector string `json:"summarySelector,omitempty" yaml:"summarySelector,omitempty"`
}

type Checkout struct {
	Defaults CheckoutValues `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Fields   CheckoutFields `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// CheckoutValues are per-merchant fallbacks used when the plan carries no
// customer name/phone or fulfillment time.
type CheckoutValues struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Time  string `json:"time,omitempty" yaml:"time,omitempty"`
}

// CheckoutFields name the selector keys of the checkout form inputs. An empty
// field means the form has no such input and the fill is skipped.
type CheckoutFields struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Time  string `json:"time,omitempty" yaml:"time,omitempty"`
}

// Load reads a merchant config from a JSON or YAML file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read merchant config %s: %w", path, err)
	}
	return Parse(raw, filepath.Ext(path))
}

// Parse decodes config bytes. ext selects YAML for ".yaml"/".yml", JSON otherwise.
func Parse(raw []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode merchant config yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode merchant config json: %w", err)
		}
	}
	return &cfg, nil
}

// OutOfStockSet returns the lower-cased out-of-stock tokens as a set.
func (c *Config) OutOfStockSet() map[string]struct{} {
	out := make(map[string]struct{}, len(c.Availability.OutOfStock))
	for _, token := range c.Availability.OutOfStock {
		normalized := strings.ToLower(strings.TrimSpace(token))
		if normalized == "" {
			continue
		}
		out[normalized] = struct{}{}
	}
	return out
}
