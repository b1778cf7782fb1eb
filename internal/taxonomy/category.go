// Package taxonomy defines the fixed set of transaction categories the
// service answers questions about, together with the keyword lists used
// by the classifier and the section titles used for display.
package taxonomy

import "strings"

type Category int

const (
	Refunds Category = iota
	Payments
	Transfers
	Exchanges
)

// Categories lists every category in its canonical order. The order is the
// tie-break for classification, so it must stay stable.
var Categories = []Category{Refunds, Payments, Transfers, Exchanges}

func (c Category) String() string {
	switch c {
	case Refunds:
		return "refunds"
	case Payments:
		return "payments"
	case Transfers:
		return "transfers"
	case Exchanges:
		return "exchanges"
	default:
		return "unknown"
	}
}

// Parse maps a category name to its Category. The match is case-insensitive
// and exact; anything else reports false.
func Parse(name string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "refunds":
		return Refunds, true
	case "payments":
		return Payments, true
	case "transfers":
		return Transfers, true
	case "exchanges":
		return Exchanges, true
	}
	return 0, false
}

// Keywords returns the classification keyword list for the category.
// Matching is by lower-cased substring against the question text.
func (c Category) Keywords() []string {
	return categoryKeywords[c]
}

// SectionTitles returns display-only section headings for generated policy
// documents. They play no part in classification or ranking.
func (c Category) SectionTitles() []string {
	return sectionTitles[c]
}

var categoryKeywords = map[Category][]string{
	Refunds: {
		"refund", "refunds", "return", "returns", "credit", "credits",
		"money back", "reimbursement", "repayment", "cash back", "chargeback",
	},
	Payments: {
		"payment", "payments", "pay", "paid", "card", "cards", "bank",
		"banking", "cash", "transfer", "credit card", "debit card", "online payment",
	},
	Transfers: {
		"transfer", "transfers", "move", "moves", "send", "sends", "wire",
		"wires", "bank transfer", "money transfer", "electronic transfer",
	},
	Exchanges: {
		"exchange", "exchanges", "swap", "swaps", "trade", "trades",
		"replace", "replaces", "substitution", "conversion",
	},
}

var sectionTitles = map[Category][]string{
	Refunds:   {"Refund Eligibility", "Return Requirements", "Refund Procedures"},
	Payments:  {"Payment Processing", "Payment Methods", "Payment Rules"},
	Transfers: {"Transfer Guidelines", "Transfer Policies", "Transfer Conditions"},
	Exchanges: {"Exchange Criteria", "Exchange Process", "Exchange Terms"},
}
