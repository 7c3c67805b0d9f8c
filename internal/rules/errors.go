package rules

import "fmt"

// Grammar is the expected shape of a rule line, quoted in diagnostics
const Grammar = "IF <lowerBound> <upperBound> <BUY|SELL> <symbol>"

// SyntaxError reports the first offending line of a rule text
type SyntaxError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// LineNumber returns the 1-based line the error refers to
func (e *SyntaxError) LineNumber() int {
	return e.Line
}

func syntaxErrorf(line int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)}
}
