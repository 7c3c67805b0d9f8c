// Package rules parses the line-oriented trading rule language used by the
// backtest panel.
//
// A rule set is plain text, one rule per line:
//
//	IF <lowerBound> <upperBound> <BUY|SELL> <symbol>
//
// Bounds are decimal numerals or NULL. Keywords and symbols are matched
// case-insensitively; symbols must appear in the configured allow-list.
package rules

import (
	"strconv"
	"strings"
)

// Action is what a rule does when it fires
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Rule is one parsed rule line
type Rule struct {
	Action     Action   `json:"action"`
	LowerBound *float64 `json:"lower_bound"`
	UpperBound *float64 `json:"upper_bound"`
	Symbol     string   `json:"symbol"`
	Line       int      `json:"line"`
}

// FiresBuy reports whether a BUY rule triggers at price
func (r Rule) FiresBuy(price float64) bool {
	if r.LowerBound != nil {
		return price <= *r.LowerBound
	}
	return r.UpperBound != nil
}

// FiresSell reports whether a SELL rule triggers at price
func (r Rule) FiresSell(price float64) bool {
	if r.UpperBound != nil {
		return price >= *r.UpperBound
	}
	return r.LowerBound != nil
}

// String renders the rule in canonical source form
func (r Rule) String() string {
	return strings.Join([]string{
		keywordIf,
		formatBound(r.LowerBound),
		formatBound(r.UpperBound),
		string(r.Action),
		r.Symbol,
	}, " ")
}

func formatBound(v *float64) string {
	if v == nil {
		return keywordNull
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// RuleSet is an ordered list of rules. Order is significant: the engine
// applies the first matching rule for a tick.
type RuleSet []Rule

// ForSymbol returns the rules for symbol, preserving order
func (rs RuleSet) ForSymbol(symbol string) RuleSet {
	symbol = strings.ToUpper(symbol)
	var filtered RuleSet
	for _, r := range rs {
		if r.Symbol == symbol {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// WithAction returns the rules with the given action, preserving order
func (rs RuleSet) WithAction(action Action) RuleSet {
	var filtered RuleSet
	for _, r := range rs {
		if r.Action == action {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Symbols returns the distinct symbols referenced, in first-appearance order
func (rs RuleSet) Symbols() []string {
	seen := make(map[string]struct{}, len(rs))
	symbols := make([]string, 0, len(rs))
	for _, r := range rs {
		if _, ok := seen[r.Symbol]; ok {
			continue
		}
		seen[r.Symbol] = struct{}{}
		symbols = append(symbols, r.Symbol)
	}
	return symbols
}

// String renders the rule set as rule text, one rule per line
func (rs RuleSet) String() string {
	lines := make([]string, len(rs))
	for i, r := range rs {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}
