package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllow = NewAllowList("AAPL", "MSFT", "GOOGL", "TSLA")

func floatPtr(v float64) *float64 {
	return &v
}

func requireSyntaxError(t *testing.T, err error) *SyntaxError {
	t.Helper()
	require.Error(t, err)
	var synErr *SyntaxError
	require.True(t, errors.As(err, &synErr), "expected *SyntaxError, got %T", err)
	return synErr
}

func TestParseRulesWellFormed(t *testing.T) {
	text := "IF 100 200 BUY AAPL\nif null 300 sell msft\n  If 50.5 NULL Buy tsla  "

	rs, err := ParseRules(text, testAllow)
	require.NoError(t, err)
	require.Len(t, rs, 3)

	assert.Equal(t, Rule{Action: ActionBuy, LowerBound: floatPtr(100), UpperBound: floatPtr(200), Symbol: "AAPL", Line: 1}, rs[0])
	assert.Equal(t, Rule{Action: ActionSell, UpperBound: floatPtr(300), Symbol: "MSFT", Line: 2}, rs[1])
	assert.Equal(t, Rule{Action: ActionBuy, LowerBound: floatPtr(50.5), Symbol: "TSLA", Line: 3}, rs[2])
}

func TestParseRulesSkipsBlankLines(t *testing.T) {
	text := "\n   \nIF 100 200 BUY AAPL\n\t\nIF NULL 250 SELL AAPL\n"

	rs, err := ParseRules(text, testAllow)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, 3, rs[0].Line)
	assert.Equal(t, 5, rs[1].Line)
}

func TestParseRulesEmptyText(t *testing.T) {
	rs, err := ParseRules("", testAllow)
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestParseRulesToleratesCRLF(t *testing.T) {
	rs, err := ParseRules("IF 1 2 BUY AAPL\r\nIF 1 2 SELL AAPL\r\n", testAllow)
	require.NoError(t, err)
	assert.Len(t, rs, 2)
}

func TestParseRulesLengthMatchesNonBlankLines(t *testing.T) {
	lines := []string{
		"IF 10 20 BUY AAPL",
		"",
		"IF NULL 30 SELL AAPL",
		"IF 5 NULL BUY GOOGL",
		"   ",
		"IF 1.25 2.5 SELL GOOGL",
	}
	rs, err := ParseRules(strings.Join(lines, "\n"), testAllow)
	require.NoError(t, err)
	require.Len(t, rs, 4)
	assert.Equal(t, []int{1, 3, 4, 6}, []int{rs[0].Line, rs[1].Line, rs[2].Line, rs[3].Line})
	assert.Equal(t, []string{"AAPL", "GOOGL"}, rs.Symbols())
}

func TestParseRulesSyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		line     int
		contains []string
	}{
		{
			name:     "four tokens",
			text:     "IF 100 BUY AAPL",
			line:     1,
			contains: []string{Grammar, `"IF 100 BUY AAPL"`},
		},
		{
			name:     "six tokens",
			text:     "IF 1 2 BUY AAPL NOW",
			line:     1,
			contains: []string{Grammar},
		},
		{
			name:     "missing IF keyword",
			text:     "WHEN 1 2 BUY AAPL",
			line:     1,
			contains: []string{Grammar},
		},
		{
			name:     "bad action",
			text:     "IF 1 2 HOLD AAPL",
			line:     1,
			contains: []string{`"HOLD"`, "BUY or SELL"},
		},
		{
			name:     "unknown symbol lists allow-list",
			text:     "IF 50 150 BUY XXXX",
			line:     1,
			contains: []string{`"XXXX"`, "AAPL, MSFT, GOOGL, TSLA"},
		},
		{
			name:     "non numeric bound",
			text:     "IF abc 2 BUY AAPL",
			line:     1,
			contains: []string{`"abc"`, "lower"},
		},
		{
			name:     "negative bound",
			text:     "IF 1 -2 SELL AAPL",
			line:     1,
			contains: []string{`"-2"`, "upper"},
		},
		{
			name:     "zero bound",
			text:     "IF 0 10 BUY AAPL",
			line:     1,
			contains: []string{`"0"`, "lower", "positive"},
		},
		{
			name:     "zero upper bound with decimals",
			text:     "IF NULL 0.000 SELL AAPL",
			line:     1,
			contains: []string{`"0.000"`, "upper"},
		},
		{
			name:     "both bounds null",
			text:     "IF NULL NULL BUY AAPL",
			line:     1,
			contains: []string{"both NULL"},
		},
		{
			name:     "line number counts blank lines",
			text:     "IF 1 2 BUY AAPL\n\n   \nIF 1 2 BUY",
			line:     4,
			contains: []string{Grammar},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := ParseRules(tt.text, testAllow)
			assert.Nil(t, rs)
			synErr := requireSyntaxError(t, err)
			assert.Equal(t, tt.line, synErr.Line)
			for _, want := range tt.contains {
				assert.Contains(t, synErr.Message, want)
			}
		})
	}
}

func TestParseRulesStopsAtFirstFailure(t *testing.T) {
	text := "IF 1 2 BUY AAPL\nIF 1 2 HOLD AAPL\nIF 1 2 BUY XXXX"

	_, err := ParseRules(text, testAllow)
	synErr := requireSyntaxError(t, err)
	assert.Equal(t, 2, synErr.Line)
	assert.Contains(t, synErr.Message, "HOLD")
	assert.NotContains(t, synErr.Message, "XXXX")
}

func TestParseRulesValidationOrder(t *testing.T) {
	// action is checked before symbol, symbol before bounds
	_, err := ParseRules("IF x y HOLD XXXX", testAllow)
	assert.Contains(t, requireSyntaxError(t, err).Message, "invalid action")

	_, err = ParseRules("IF x y BUY XXXX", testAllow)
	assert.Contains(t, requireSyntaxError(t, err).Message, "unknown symbol")
}

func TestSyntaxErrorString(t *testing.T) {
	err := &SyntaxError{Line: 3, Message: "boom"}
	assert.Equal(t, "line 3: boom", err.Error())
}

func TestRuleSetStringRoundTrip(t *testing.T) {
	text := "IF 100 200 BUY AAPL\nIF NULL 300.5 SELL MSFT\nIF 0.25 NULL BUY TSLA"

	rs, err := ParseRules(text, testAllow)
	require.NoError(t, err)
	assert.Equal(t, text, rs.String())

	again, err := ParseRules(rs.String(), testAllow)
	require.NoError(t, err)
	assert.Equal(t, rs, again)
}

func TestRuleFiring(t *testing.T) {
	buyLow := Rule{Action: ActionBuy, LowerBound: floatPtr(100), UpperBound: floatPtr(200)}
	assert.True(t, buyLow.FiresBuy(100))
	assert.True(t, buyLow.FiresBuy(90))
	assert.False(t, buyLow.FiresBuy(150))

	buyAlways := Rule{Action: ActionBuy, UpperBound: floatPtr(200)}
	assert.True(t, buyAlways.FiresBuy(1000))

	sellHigh := Rule{Action: ActionSell, LowerBound: floatPtr(50), UpperBound: floatPtr(200)}
	assert.True(t, sellHigh.FiresSell(200))
	assert.False(t, sellHigh.FiresSell(199.99))

	sellAlways := Rule{Action: ActionSell, LowerBound: floatPtr(50)}
	assert.True(t, sellAlways.FiresSell(1))
}

func TestRuleSetFilters(t *testing.T) {
	rs, err := ParseRules("IF 1 2 BUY AAPL\nIF 1 2 SELL MSFT\nIF 3 4 SELL AAPL", testAllow)
	require.NoError(t, err)

	aapl := rs.ForSymbol("aapl")
	require.Len(t, aapl, 2)
	assert.Equal(t, 1, aapl[0].Line)
	assert.Equal(t, 3, aapl[1].Line)

	sells := aapl.WithAction(ActionSell)
	require.Len(t, sells, 1)
	assert.Equal(t, 3, sells[0].Line)
}

func TestAllowList(t *testing.T) {
	al := NewAllowList("aapl", " MSFT ", "", "AAPL")
	assert.Equal(t, []string{"AAPL", "MSFT"}, al.Symbols())
	assert.Equal(t, 2, al.Len())
	assert.True(t, al.Contains("msft"))
	assert.False(t, al.Contains("TSLA"))
	assert.Equal(t, "AAPL, MSFT", al.String())
}
