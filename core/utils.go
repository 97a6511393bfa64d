package core

import "strings"

// DefaultAttendanceGoal is the minimum attendance percentage required for a
// subject unless the subject overrides it.
const DefaultAttendanceGoal = 75.0

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}
