package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		merchant string
		want     string
	}{
		{"스타벅스 강남점", "식비"},
		{"STARBUCKS COFFEE", "식비"},
		{"쿠팡이츠", "식비"},
		{"쿠 팡 이 츠", "식비"},
		{"쿠팡(주)", "쇼핑"},
		{"이마트 성수점", "생활"},
		{"이마트24 역삼", "생활"},
		{"티머니 교통카드", "교통"},
		{"넷플릭스", "구독"},
		{"서울대학교병원", "의료"},
		{"한국전력공사", "공과금"},
		{"(주)회사 급여", "수입"},
		{"미래에셋증권", "투자"},
		{"", FallbackCategory},
		{"   ", FallbackCategory},
		{"알수없는가게", FallbackCategory},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.merchant), tt.merchant)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	c, err := NewClassifier([]MerchantRule{
		{Keyword: "mart", Category: "생활"},
		{Keyword: "emart", Category: "쇼핑"},
	})
	require.NoError(t, err)
	assert.Equal(t, "생활", c.Classify("E Mart"))
}

func TestMerchantCategoriesExistInTaxonomy(t *testing.T) {
	for _, r := range DefaultClassifier().Rules() {
		_, ok := Lookup(r.Category)
		assert.True(t, ok, "keyword %s maps to unknown category %s", r.Keyword, r.Category)
	}
	_, ok := Lookup(FallbackCategory)
	assert.True(t, ok)
}

func TestNewClassifierValidation(t *testing.T) {
	_, err := NewClassifier([]MerchantRule{{Keyword: " ", Category: "식비"}})
	assert.Error(t, err)
	_, err = NewClassifier([]MerchantRule{{Keyword: "x", Category: ""}})
	assert.Error(t, err)
}

func TestParseMerchantRules(t *testing.T) {
	rules, err := ParseMerchantRules([]byte("merchants:\n  - {keyword: Foo Bar, category: 생활}\n"))
	require.NoError(t, err)
	require.Len(t, rules, 1)

	c, err := NewClassifier(rules)
	require.NoError(t, err)
	assert.Equal(t, "foobar", c.Rules()[0].Keyword)
	assert.Equal(t, "생활", c.Classify("the FOO BAR shop"))
}
