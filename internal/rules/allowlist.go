package rules

import "strings"

// AllowList is the fixed set of tradable symbols the parser accepts
type AllowList struct {
	symbols []string
	index   map[string]struct{}
}

// NewAllowList builds an allow-list. Symbols are upper-cased, blanks and
// duplicates are dropped, first occurrence order is kept.
func NewAllowList(symbols ...string) AllowList {
	al := AllowList{
		symbols: make([]string, 0, len(symbols)),
		index:   make(map[string]struct{}, len(symbols)),
	}
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := al.index[s]; ok {
			continue
		}
		al.index[s] = struct{}{}
		al.symbols = append(al.symbols, s)
	}
	return al
}

// Contains reports whether symbol (any case) is allowed
func (al AllowList) Contains(symbol string) bool {
	_, ok := al.index[strings.ToUpper(symbol)]
	return ok
}

// Symbols returns a copy of the allowed symbols
func (al AllowList) Symbols() []string {
	out := make([]string, len(al.symbols))
	copy(out, al.symbols)
	return out
}

// Len returns the number of allowed symbols
func (al AllowList) Len() int {
	return len(al.symbols)
}

func (al AllowList) String() string {
	return strings.Join(al.symbols, ", ")
}
