package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// JSONOutput reports whether --json was given.
func JSONOutput() bool {
	return jsonOutput
}

// SetJSONOutput overrides the --json flag.
func SetJSONOutput(enabled bool) {
	jsonOutput = enabled
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ParseDate parses YYYY-MM-DD as local midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", value)
	}
	return t, nil
}

// ParseDateTime accepts RFC 3339, "YYYY-MM-DD HH:MM" in local time, or a
// bare date meaning local midnight.
func ParseDateTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateTimeLayout, value, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q, use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC 3339", value)
}

// FormatMinutes renders a duration in minutes as "1h30m".
func FormatMinutes(minutes int) string {
	return (time.Duration(minutes) * time.Minute).String()
}
