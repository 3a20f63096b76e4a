package screening

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTransition is returned when an action is not allowed in the current step.
var ErrInvalidTransition = errors.New("invalid wizard transition")

// IncompleteInputError reports unanswered questions, or intake fields that are
// missing or out of range.
type IncompleteInputError struct {
	Questions []int
	Fields    []string
}

func (e *IncompleteInputError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Questions) > 0 {
		keys := make([]string, len(e.Questions))
		for i, q := range e.Questions {
			keys[i] = QuestionKey(q)
		}
		parts = append(parts, "unanswered questions "+strings.Join(keys, ", "))
	}
	if len(e.Fields) > 0 {
		parts = append(parts, "fields to complete "+strings.Join(e.Fields, ", "))
	}
	if len(parts) == 0 {
		return "incomplete input"
	}
	return "incomplete input: " + strings.Join(parts, "; ")
}

// InvalidCategoryError reports a value outside a field's declared domain.
type InvalidCategoryError struct {
	Field string
	Value string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Field)
}

func transitionError(action string, from Step) error {
	return fmt.Errorf("%w: cannot %s during %s step", ErrInvalidTransition, action, from)
}
