// Package taxonomy holds the static category taxonomy, the merchant keyword
// classifier and the category-group resolver.
package taxonomy

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var embeddedTaxonomy []byte

// Group is one of the four top-level money groups.
type Group string

const (
	GroupFixedExpense    Group = "fixed_expense"
	GroupVariableExpense Group = "variable_expense"
	GroupIncome          Group = "income"
	GroupAssetTransfer   Group = "asset_transfer"
)

// Groups returns every group in declaration order.
func Groups() []Group {
	return []Group{GroupFixedExpense, GroupVariableExpense, GroupIncome, GroupAssetTransfer}
}

// Valid reports whether g is a known group.
func (g Group) Valid() bool {
	switch g {
	case GroupFixedExpense, GroupVariableExpense, GroupIncome, GroupAssetTransfer:
		return true
	default:
		return false
	}
}

// CategorySpec describes one category of the taxonomy.
type CategorySpec struct {
	Group         Group
	Category      string
	SubCategories []string
}

// Taxonomy is an immutable, indexed category table.
type Taxonomy struct {
	specs []CategorySpec
	index map[string]int
}

type taxonomyFile struct {
	Groups []struct {
		Group      Group `yaml:"group"`
		Categories []struct {
			Name          string   `yaml:"name"`
			SubCategories []string `yaml:"subcategories"`
		} `yaml:"categories"`
	} `yaml:"groups"`
}

// Parse loads a taxonomy from YAML. Unknown groups, empty names and
// duplicate category keys are rejected.
func Parse(data []byte) (*Taxonomy, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	t := &Taxonomy{index: make(map[string]int)}
	for _, g := range f.Groups {
		if !g.Group.Valid() {
			return nil, fmt.Errorf("taxonomy: unknown group %q", g.Group)
		}
		for _, c := range g.Categories {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				return nil, fmt.Errorf("taxonomy: empty category name in group %s", g.Group)
			}
			if _, dup := t.index[name]; dup {
				return nil, fmt.Errorf("taxonomy: duplicate category %q", name)
			}
			subs := append([]string(nil), c.SubCategories...)
			t.index[name] = len(t.specs)
			t.specs = append(t.specs, CategorySpec{Group: g.Group, Category: name, SubCategories: subs})
		}
	}
	if len(t.specs) == 0 {
		return nil, fmt.Errorf("taxonomy: no categories")
	}
	return t, nil
}

// Lookup returns the spec whose key equals category (surrounding space ignored).
func (t *Taxonomy) Lookup(category string) (CategorySpec, bool) {
	i, ok := t.index[strings.TrimSpace(category)]
	if !ok {
		return CategorySpec{}, false
	}
	return t.specs[i], true
}

// Categories returns the category names of one group in declaration order.
func (t *Taxonomy) Categories(g Group) []string {
	var out []string
	for _, s := range t.specs {
		if s.Group == g {
			out = append(out, s.Category)
		}
	}
	return out
}

// All returns a copy of every spec in declaration order.
func (t *Taxonomy) All() []CategorySpec {
	out := make([]CategorySpec, len(t.specs))
	copy(out, t.specs)
	return out
}

var defaultTaxonomy = mustParse(embeddedTaxonomy)

func mustParse(data []byte) *Taxonomy {
	t, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Default returns the embedded taxonomy.
func Default() *Taxonomy { return defaultTaxonomy }

// Lookup queries the embedded taxonomy.
func Lookup(category string) (CategorySpec, bool) { return defaultTaxonomy.Lookup(category) }

// Categories lists one group of the embedded taxonomy.
func Categories(g Group) []string { return defaultTaxonomy.Categories(g) }

// All lists the embedded taxonomy.
func All() []CategorySpec { return defaultTaxonomy.All() }
