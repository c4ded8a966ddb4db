package docskema

import "strings"

// ValidationAction decides what the datastore does with a document that fails
// validation.
type ValidationAction string

const (
	ActionError ValidationAction = "error" // Reject the write.
	ActionWarn  ValidationAction = "warn"  // Accept the write and log a warning.
)

func (a ValidationAction) String() string { return string(a) }

// Or returns a, or def when a is unset.
func (a ValidationAction) Or(def ValidationAction) ValidationAction {
	if a == "" {
		return def
	}
	return a
}

// ValidationLevel decides which writes are validated.
type ValidationLevel string

const (
	LevelOff      ValidationLevel = "off"      // No validation.
	LevelModerate ValidationLevel = "moderate" // Only documents that already conform.
	LevelStrict   ValidationLevel = "strict"   // Every insert and update.
)

func (l ValidationLevel) String() string { return string(l) }

// Or returns l, or def when l is unset.
func (l ValidationLevel) Or(def ValidationLevel) ValidationLevel {
	if l == "" {
		return def
	}
	return l
}

// ParseValidationAction maps a case-insensitive name to a ValidationAction.
// Unrecognised names are returned as-is; the datastore is the authority on
// which actions it accepts.
func ParseValidationAction(s string) ValidationAction {
	return ValidationAction(strings.ToLower(strings.TrimSpace(s)))
}

// ParseValidationLevel maps a case-insensitive name to a ValidationLevel.
func ParseValidationLevel(s string) ValidationLevel {
	return ValidationLevel(strings.ToLower(strings.TrimSpace(s)))
}

// Options configures Schema. The zero value asks for no defaults, no
// timestamps, ActionError and LevelStrict.
type Options struct {
	// Defaults are applied by the model layer on insert. They are carried
	// through untouched and are not checked against the field types.
	Defaults map[string]any
	// Timestamps adds required createdAt/updatedAt date members.
	Timestamps bool
	// ValidationAction defaults to ActionError.
	ValidationAction ValidationAction
	// ValidationLevel defaults to LevelStrict.
	ValidationLevel ValidationLevel
}
