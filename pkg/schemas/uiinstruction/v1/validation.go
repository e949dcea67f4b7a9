package uiinstruction

import "errors"

type ValidationIssue struct{ Field, Reason string }

type ValidationError struct{ Issues []ValidationIssue }

var ErrInvalidInstruction = errors.New("invalid instruction")

func (e *ValidationError) Error() string { return ErrInvalidInstruction.Error() }
func (e *ValidationError) add(f, r string) {
	e.Issues = append(e.Issues, ValidationIssue{Field: f, Reason: r})
}
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInstruction }

// Validate checks the envelope shape only. Command-specific requirements
// (record id for showAccountInfo and so on) are the consumer's business.
func Validate(m Message) error {
	ve := &ValidationError{}
	if m.Data.Payload.Command == "" {
		ve.add("data.payload.Command__c", "required")
	}
	if m.Meta.Type != "" && m.Meta.Type != EventType {
		ve.add("meta.type", "unexpected event type")
	}
	if len(ve.Issues) > 0 {
		return ve
	}
	return nil
}
