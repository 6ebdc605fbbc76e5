package teamup

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
)

const rrulePrefix = "rrule:"

// NormalizeRecurrence strips a leading "RRULE:" token (any case) from a
// recurrence-rule string, leaving the bare rule the API expects. Absence of
// the prefix is not an error; empty input yields empty output. The result
// never carries the prefix, so the function is idempotent.
func NormalizeRecurrence(input string) string {
	rule := strings.TrimSpace(input)
	if len(rule) >= len(rrulePrefix) && strings.EqualFold(rule[:len(rrulePrefix)], rrulePrefix) {
		rule = strings.TrimSpace(rule[len(rrulePrefix):])
	}
	return rule
}

// ValidateRecurrence reports whether a recurrence rule parses as RFC
// 5545-flavored RRULE content. The empty rule is valid (no recurrence).
// Normalization never rejects input, so callers that want early feedback
// before hitting the API validate separately.
func ValidateRecurrence(rule string) error {
	rule = NormalizeRecurrence(rule)
	if rule == "" {
		return nil
	}
	if _, err := rrule.StrToRRule(rule); err != nil {
		return fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}
	return nil
}
