package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// OptionalDate is a tri-state JSON date field for partial updates: a field
// that was absent from the payload (Set=false), an explicit null (Set=true,
// Valid=false), or a parsed date value. Explicit null clears the stored date,
// absent leaves it untouched.
type OptionalDate struct {
	Set   bool
	Valid bool
	Time  time.Time
}

// UnmarshalJSON accepts RFC 3339 timestamps, plain YYYY-MM-DD dates, or null.
// encoding/json only invokes this when the key is present, so Set marks
// presence.
func (d *OptionalDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(data, []byte("null")) {
		d.Valid = false
		return nil
	}

	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("due date must be a string or null")
	}

	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Valid = true
	d.Time = t
	return nil
}

// ParseDate parses a due date supplied by a client. It accepts RFC 3339 or a
// bare calendar date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected RFC 3339 or YYYY-MM-DD", s)
}
