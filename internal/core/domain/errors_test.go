package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseError(t *testing.T) {
	inner := errors.New("unexpected token")
	err := fmt.Errorf("ChatGPT: %w", &ParseError{Stage: "genres", Raw: "not json", Err: inner})

	if !errors.Is(err, ErrParse) {
		t.Fatal("expected wrapped ParseError to match ErrParse")
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected wrapped ParseError to unwrap to its cause")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatal("expected errors.As to find the ParseError")
	}
	if parseErr.Stage != "genres" || parseErr.Raw != "not json" {
		t.Fatalf("unexpected payload: %+v", parseErr)
	}
}
