package ingest

import "strings"

// Category is one of the fixed product categories the pipeline answers
// questions about. Rows mapping to CategoryUnmapped are excluded.
type Category string

const (
	CategoryCreditCard    Category = "Credit card"
	CategoryPersonalLoan  Category = "Personal loan"
	CategoryBNPL          Category = "Buy Now, Pay Later"
	CategorySavings       Category = "Savings account"
	CategoryMoneyTransfer Category = "Money transfer, virtual currency"
	CategoryUnmapped      Category = "Unmapped"
)

// Categories lists the retained target categories in taxonomy order.
func Categories() []Category {
	return []Category{
		CategoryCreditCard,
		CategoryPersonalLoan,
		CategoryBNPL,
		CategorySavings,
		CategoryMoneyTransfer,
	}
}

// categoryRule maps keyword triggers onto a target category. Matching is
// case-insensitive containment over the combined product and sub-product
// labels. Rules are evaluated in order and the first match wins; the order
// below is part of the contract (broad triggers like "loan" sit after the
// more specific ones so they only catch what nothing else claimed).
type categoryRule struct {
	target   Category
	keywords []string
}

var categoryRules = []categoryRule{
	{CategoryBNPL, []string{"buy now", "pay later", "bnpl"}},
	{CategoryCreditCard, []string{"credit card"}},
	{CategoryMoneyTransfer, []string{"money transfer", "virtual currency", "remittance", "mobile wallet"}},
	{CategorySavings, []string{"savings account", "checking or savings", "savings"}},
	{CategoryPersonalLoan, []string{"personal loan", "consumer loan", "installment loan", "payday loan", "title loan", "loan"}},
}

// MapCategory maps a raw product label (plus optional sub-product) onto one
// of the fixed target categories, or CategoryUnmapped when no rule matches.
func MapCategory(product, subProduct string) Category {
	haystack := strings.ToLower(product + " " + subProduct)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.target
			}
		}
	}
	return CategoryUnmapped
}
