package taxonomy

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed merchants.yaml
var embeddedMerchants []byte

// FallbackCategory is returned when no merchant keyword matches.
const FallbackCategory = "기타"

// MerchantRule maps a keyword to a category.
type MerchantRule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// Classifier suggests a category from free-form merchant text.
type Classifier struct {
	rules []MerchantRule // keywords already folded
}

// NewClassifier builds a classifier over rules, matched in the given order.
func NewClassifier(rules []MerchantRule) (*Classifier, error) {
	c := &Classifier{rules: make([]MerchantRule, 0, len(rules))}
	for i, r := range rules {
		kw := fold(r.Keyword)
		if kw == "" {
			return nil, fmt.Errorf("merchant rule %d: empty keyword", i)
		}
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("merchant rule %d (%s): empty category", i, r.Keyword)
		}
		c.rules = append(c.rules, MerchantRule{Keyword: kw, Category: strings.TrimSpace(r.Category)})
	}
	return c, nil
}

// ParseMerchantRules reads a merchant table in the embedded YAML format.
func ParseMerchantRules(data []byte) ([]MerchantRule, error) {
	var f struct {
		Merchants []MerchantRule `yaml:"merchants"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse merchant rules: %w", err)
	}
	return f.Merchants, nil
}

// Classify returns the category of the first rule whose keyword occurs in
// the folded merchant text, or FallbackCategory.
func (c *Classifier) Classify(merchant string) string {
	m := fold(merchant)
	if m == "" {
		return FallbackCategory
	}
	for _, r := range c.rules {
		if strings.Contains(m, r.Keyword) {
			return r.Category
		}
	}
	return FallbackCategory
}

// Rules returns the folded rule table.
func (c *Classifier) Rules() []MerchantRule {
	return append([]MerchantRule(nil), c.rules...)
}

var defaultClassifier = mustClassifier(embeddedMerchants)

func mustClassifier(data []byte) *Classifier {
	rules, err := ParseMerchantRules(data)
	if err != nil {
		panic(err)
	}
	c, err := NewClassifier(rules)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultClassifier returns the classifier over the embedded merchant table.
func DefaultClassifier() *Classifier { return defaultClassifier }

// Classify classifies with the embedded merchant table.
func Classify(merchant string) string { return defaultClassifier.Classify(merchant) }

// fold lowercases and removes every whitespace rune.
func fold(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
