package taxonomy

import "strings"

var (
	incomeTerms = []string{
		"수입", "입금", "급여", "월급", "상여", "보너스", "용돈", "환급", "이자", "배당",
		"income", "salary", "deposit", "refund",
	}
	transferTerms = []string{
		"이체", "송금", "저축", "적금", "예금", "투자", "증권", "주식", "펀드", "카드대금",
		"transfer", "saving", "invest",
	}
	fixedTerms = []string{
		"공과금", "관리비", "월세", "전기", "수도", "가스", "보험", "통신", "구독",
		"렌트", "rent", "insurance", "utility", "subscription",
	}
)

// Resolver maps a free-form category to a group.
type Resolver struct {
	tax *Taxonomy
}

// NewResolver returns a resolver backed by t.
func NewResolver(t *Taxonomy) *Resolver {
	return &Resolver{tax: t}
}

// Resolve returns the group for category. An exact taxonomy key wins; then
// income, transfer and fixed-cost keywords are tried on category and, if
// none hit, on typeHint. Anything else, including the empty category, is
// variable_expense.
func (r *Resolver) Resolve(category, typeHint string) Group {
	if strings.TrimSpace(category) == "" {
		return GroupVariableExpense
	}
	if spec, ok := r.tax.Lookup(category); ok {
		return spec.Group
	}
	if g, ok := keywordGroup(category); ok {
		return g
	}
	if g, ok := keywordGroup(typeHint); ok {
		return g
	}
	return GroupVariableExpense
}

func keywordGroup(s string) (Group, bool) {
	s = fold(s)
	if s == "" {
		return "", false
	}
	switch {
	case containsAny(s, incomeTerms):
		return GroupIncome, true
	case containsAny(s, transferTerms):
		return GroupAssetTransfer, true
	case containsAny(s, fixedTerms):
		return GroupFixedExpense, true
	}
	return "", false
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

var defaultResolver = NewResolver(defaultTaxonomy)

// ResolveGroup resolves against the embedded taxonomy.
func ResolveGroup(category, typeHint string) Group {
	return defaultResolver.Resolve(category, typeHint)
}
