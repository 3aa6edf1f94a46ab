package types

import "fmt"

// ParseResult is everything extracted from one Go source file
type ParseResult struct {
	PackageName string
	Identifiers []Identifier
	Imports     []Import

	// Errors holds syntax errors of the file and identifiers whose analysis
	// failed. A file with only identifier errors still parsed.
	Errors []ParseError
}

// ParseError is a syntax error, or the failure to analyze one identifier when
// Identifier is set
type ParseError struct {
	File       string
	Position   Position
	Identifier string
	Message    string
}

func (pe *ParseError) Error() string {
	if pe.Identifier != "" {
		return fmt.Sprintf("%d:%d: %s: %s", pe.Position.Line, pe.Position.Column, pe.Identifier, pe.Message)
	}
	return fmt.Sprintf("%d:%d: %s", pe.Position.Line, pe.Position.Column, pe.Message)
}

// HasErrors returns true if any errors were recorded
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddSyntaxError records an error reported by the Go parser
func (pr *ParseResult) AddSyntaxError(file string, pos Position, msg string) {
	pr.Errors = append(pr.Errors, ParseError{
		File:     file,
		Position: pos,
		Message:  msg,
	})
}

// AddIdentifierError records that id was extracted but could not be analyzed
func (pr *ParseResult) AddIdentifierError(file string, id *Identifier, err error) {
	pr.Errors = append(pr.Errors, ParseError{
		File:       file,
		Position:   id.Start,
		Identifier: id.Name,
		Message:    err.Error(),
	})
}

// SyntaxError returns the first syntax error message, if any
func (pr *ParseResult) SyntaxError() (string, bool) {
	for _, pe := range pr.Errors {
		if pe.Identifier == "" {
			return pe.Message, true
		}
	}
	return "", false
}
