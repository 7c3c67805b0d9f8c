package rules

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	keywordIf   = "IF"
	keywordNull = "NULL"
	ruleTokens  = 5
)

// ParseRules converts rule text into a RuleSet. Blank lines are skipped.
// Parsing stops at the first invalid line and returns a *SyntaxError whose
// Line is the 1-based position of that line in text.
func ParseRules(text string, allow AllowList) (RuleSet, error) {
	var ruleSet RuleSet
	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rule, err := parseLine(lineNo, line, allow)
		if err != nil {
			return nil, err
		}
		ruleSet = append(ruleSet, rule)
	}
	return ruleSet, nil
}

func parseLine(lineNo int, line string, allow AllowList) (Rule, error) {
	tokens := strings.Fields(line)
	if len(tokens) != ruleTokens || !strings.EqualFold(tokens[0], keywordIf) {
		return Rule{}, syntaxErrorf(lineNo, "invalid rule %q: expected %q", line, Grammar)
	}

	action := Action(strings.ToUpper(tokens[3]))
	if action != ActionBuy && action != ActionSell {
		return Rule{}, syntaxErrorf(lineNo, "invalid action %q: expected BUY or SELL", tokens[3])
	}

	symbol := strings.ToUpper(tokens[4])
	if !allow.Contains(symbol) {
		return Rule{}, syntaxErrorf(lineNo, "unknown symbol %q: expected one of %s", tokens[4], allow)
	}

	lower, err := parseBound(lineNo, "lower", tokens[1])
	if err != nil {
		return Rule{}, err
	}
	upper, err := parseBound(lineNo, "upper", tokens[2])
	if err != nil {
		return Rule{}, err
	}
	if lower == nil && upper == nil {
		return Rule{}, syntaxErrorf(lineNo, "rule never fires: lower and upper bound are both NULL")
	}

	return Rule{
		Action:     action,
		LowerBound: lower,
		UpperBound: upper,
		Symbol:     symbol,
		Line:       lineNo,
	}, nil
}

func parseBound(lineNo int, name, token string) (*float64, error) {
	if strings.EqualFold(token, keywordNull) {
		return nil, nil
	}
	d, err := decimal.NewFromString(token)
	if err != nil || !d.IsPositive() {
		return nil, syntaxErrorf(lineNo, "invalid %s bound %q: expected a positive number or NULL", name, token)
	}
	v := d.InexactFloat64()
	return &v, nil
}
