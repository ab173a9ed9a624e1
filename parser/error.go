package parser

import "fmt"

// SyntaxError is returned for any parse failure: an unexpected token, a
// missing punctuation mark, or an expectation that was not met. Line and
// Column locate the offending token.
type SyntaxError struct {
	Line    int32
	Column  int
	Message string
}

// CreateSyntaxError constructs a SyntaxError at the given position.
func CreateSyntaxError(line int32, column int, message string) SyntaxError {
	return SyntaxError{
		Line:    line,
		Column:  column,
		Message: message,
	}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 Osprey syntax error:\nline:%d, column:%d - %s", e.Line, e.Column, e.Message)
}
