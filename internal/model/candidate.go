package model

// ExpenseCandidate is an expense under construction, not yet committed.
// Amount and Item must both be present before the candidate is complete;
// Category is always derivable and never blocks completeness.
type ExpenseCandidate struct {
	Amount       *float64
	Item         *string
	Category     *string
	RawFragments []string
}

// Complete reports whether the candidate can be committed.
func (c *ExpenseCandidate) Complete() bool {
	return c != nil && c.Amount != nil && c.Item != nil
}

// Merge folds a newer candidate into this one. Non-nil incoming fields
// overwrite; nil incoming fields never erase existing values, so context
// accumulated across clarification turns can only grow.
func (c *ExpenseCandidate) Merge(in ExpenseCandidate) {
	if in.Amount != nil {
		c.Amount = in.Amount
	}
	if in.Item != nil {
		c.Item = in.Item
	}
	if in.Category != nil {
		c.Category = in.Category
	}
	c.RawFragments = append(c.RawFragments, in.RawFragments...)
}

// Clone returns a deep copy of the candidate.
func (c ExpenseCandidate) Clone() ExpenseCandidate {
	out := c
	if c.Amount != nil {
		v := *c.Amount
		out.Amount = &v
	}
	if c.Item != nil {
		v := *c.Item
		out.Item = &v
	}
	if c.Category != nil {
		v := *c.Category
		out.Category = &v
	}
	out.RawFragments = append([]string(nil), c.RawFragments...)
	return out
}

// MissingFields names the fields still required for completeness, in a
// stable order (amount before item).
func (c *ExpenseCandidate) MissingFields() []string {
	var missing []string
	if c == nil || c.Amount == nil {
		missing = append(missing, "amount")
	}
	if c == nil || c.Item == nil {
		missing = append(missing, "item")
	}
	return missing
}

// ClassifierResult is the external classifier's structured output for one
// message. Every field except Intent is optional; values are raw tokens that
// still need normalization. The whole record is untrusted input.
type ClassifierResult struct {
	Amount   *string
	Item     *string
	Category *string
	Intent   Intent
}

// AmountToken returns the raw amount token, or "" when absent.
func (r ClassifierResult) AmountToken() string {
	if r.Amount == nil {
		return ""
	}
	return *r.Amount
}

// ItemText returns the item description, or "" when absent.
func (r ClassifierResult) ItemText() string {
	if r.Item == nil {
		return ""
	}
	return *r.Item
}

// CategoryText returns the category guess, or "" when absent.
func (r ClassifierResult) CategoryText() string {
	if r.Category == nil {
		return ""
	}
	return *r.Category
}
