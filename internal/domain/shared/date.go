package shared

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used in requests and responses
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD value into a UTC midnight time.
// field names the input in the error message.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, NewDomainError("INVALID_DATE", fmt.Sprintf("Invalid %s: expected YYYY-MM-DD", field))
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD, or "" for the zero time
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
