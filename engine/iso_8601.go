package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// groups: 1 years, 2 months, 3 weeks, 4 days, 5 time designator, 6 hours, 7 minutes, 8 seconds
var iso8601DurationRegexp = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

func NewISO8601Duration(v string) (ISO8601Duration, error) {
	if v == "" {
		return ISO8601Duration(v), nil
	}
	if _, err := parseISO8601Duration(v); err != nil {
		return "", err
	}
	return ISO8601Duration(v), nil
}

// ISO8601Duration is a duration in ISO 8601 format - e.g. P1D or PT1H30M.
// The zero value has a duration of 0 seconds.
//
// see https://en.wikipedia.org/wiki/ISO_8601#Durations
type ISO8601Duration string

// Calculate adds the duration to t. An invalid duration is treated like the zero value.
func (d ISO8601Duration) Calculate(t time.Time) time.Time {
	if d.IsZero() {
		return t
	}

	c, err := parseISO8601Duration(string(d))
	if err != nil {
		return t
	}

	t = t.AddDate(c[0], c[1], c[2]*7+c[3])
	return t.Add(time.Duration(c[4])*time.Hour + time.Duration(c[5])*time.Minute + time.Duration(c[6])*time.Second)
}

func (d ISO8601Duration) IsZero() bool {
	return d == ""
}

func (d ISO8601Duration) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

func (d ISO8601Duration) String() string {
	return string(d)
}

func (d *ISO8601Duration) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 {
		return fmt.Errorf("invalid ISO 8601 duration data %s", s)
	}

	// validation is done, when a command is executed
	*d = ISO8601Duration(s[1 : len(s)-1])
	return nil
}

// parseISO8601Duration returns years, months, weeks, days, hours, minutes and seconds.
func parseISO8601Duration(v string) ([7]int, error) {
	var c [7]int

	m := iso8601DurationRegexp.FindStringSubmatch(v)
	if m == nil {
		return c, fmt.Errorf("failed to parse ISO 8601 duration %s", v)
	}

	// P and PT are no durations, T must be followed by at least one time component
	hasDate := m[1] != "" || m[2] != "" || m[3] != "" || m[4] != ""
	hasTime := m[6] != "" || m[7] != "" || m[8] != ""
	if (m[5] != "" && !hasTime) || (!hasDate && !hasTime) {
		return c, fmt.Errorf("failed to parse ISO 8601 duration %s", v)
	}

	for i, g := range []string{m[1], m[2], m[3], m[4], m[6], m[7], m[8]} {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			return c, fmt.Errorf("failed to parse ISO 8601 duration %s: %v", v, err)
		}
		c[i] = n
	}

	return c, nil
}
