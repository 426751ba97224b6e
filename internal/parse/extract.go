package parse

import (
	"strings"

	"expensebot/internal/model"
)

// fillerWords are dropped when deriving an item description from the text
// surrounding an amount token.
var fillerWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "i": {}, "my": {},
	"for": {}, "on": {}, "of": {}, "at": {},
	"spent": {}, "bought": {}, "paid": {}, "got": {}, "buy": {},
	"rs": {}, "rs.": {}, "pkr": {}, "rupees": {},
}

// ExtractCandidate parses a message fragment into a candidate without any
// classifier help: the first amount-like token becomes the amount and the
// surrounding words, minus filler, become the item. Used for the trailing
// fragments of a multi-expense message, which the classifier never sees
// individually.
func ExtractCandidate(fragment string) model.ExpenseCandidate {
	cand := model.ExpenseCandidate{RawFragments: []string{fragment}}

	remainder := fragment
	if loc := amountTokenRe.FindStringIndex(fragment); loc != nil {
		token := fragment[loc[0]:loc[1]]
		if amount := NormalizeAmount(token); amount != nil {
			cand.Amount = amount
			remainder = fragment[:loc[0]] + " " + fragment[loc[1]:]
		}
	}

	if item := itemFrom(remainder); item != "" {
		cand.Item = &item
	}
	return cand
}

func itemFrom(text string) string {
	var words []string
	for _, w := range strings.Fields(text) {
		trimmed := strings.Trim(w, ",.;:!?")
		if trimmed == "" {
			continue
		}
		if _, filler := fillerWords[strings.ToLower(trimmed)]; filler {
			continue
		}
		words = append(words, trimmed)
	}
	return strings.Join(words, " ")
}
