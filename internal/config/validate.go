package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is returned when a configuration is internally inconsistent.
// Its message is meant to be shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err (or anything it wraps) is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks sequence structure and rejects duplicate sequences across actions.
func (c *Config) Validate() error {
	for _, a := range Actions() {
		seq := c.Sequence(a)
		if seq == nil {
			continue
		}
		if seq.First.Empty() || (seq.Second != nil && seq.Second.Empty()) {
			return &ValidationError{Message: fmt.Sprintf("Hotkey '%s' contains an empty chord.", a)}
		}
		if seq.Second != nil && seq.MaxGapMs == 0 {
			return &ValidationError{Message: fmt.Sprintf("Hotkey '%s' is a two-chord sequence with max_gap_ms = 0.", a)}
		}
	}

	if msg := FindDuplicateSequences(c); msg != "" {
		return &ValidationError{Message: msg}
	}
	return nil
}

// FindDuplicateSequences returns a user-facing description of every pair of
// actions sharing the same sequence, or "" when there is none. Convert last
// word and convert selection may share a sequence.
func FindDuplicateSequences(c *Config) string {
	actions := Actions()

	var pairs [][2]Action
	for i, a := range actions {
		seqA := c.Sequence(a)
		if seqA == nil {
			continue
		}
		for _, b := range actions[i+1:] {
			seqB := c.Sequence(b)
			if seqB == nil || !seqA.Equal(*seqB) || allowedDuplicate(a, b) {
				continue
			}
			pairs = append(pairs, [2]Action{a, b})
		}
	}

	if len(pairs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Duplicate hotkey sequences found:\n\n")
	for _, p := range pairs {
		fmt.Fprintf(&b, "• '%s' and '%s'\n", p[0], p[1])
	}
	b.WriteString("\nEach action must have a unique hotkey sequence.")
	return b.String()
}

func allowedDuplicate(a, b Action) bool {
	return (a == ActionConvertLastWord && b == ActionConvertSelection) ||
		(a == ActionConvertSelection && b == ActionConvertLastWord)
}
