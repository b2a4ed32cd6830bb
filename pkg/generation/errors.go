package generation

import (
	"fmt"
	"unicode/utf8"
)

const rawSnippetLimit = 100

// ParseError means the generation service returned content that is not
// valid JSON after envelope stripping. The offending text is carried
// truncated for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model returned invalid JSON: %s", truncate(e.Raw, rawSnippetLimit))
}

func (e *ParseError) Unwrap() error { return e.Err }

// FormatError means the payload parsed but is structurally invalid: a
// missing required field, a wrong enum value, or a broken stage-level rule.
// Generation is abandoned whole; no partial stage is ever committed.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string { return e.msg }

func formatErrorf(format string, args ...any) *FormatError {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
