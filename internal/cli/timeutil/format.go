// Package timeutil formats times and durations for CLI output.
package timeutil

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// LocalTimeFormat is the format used for displaying local times in CLI output.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// FormatUptime renders a Go duration string as "3d 0h 30m 15s", dropping
// leading zero units. Unparsable input is returned unchanged.
func FormatUptime(uptime string) string {
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	total := int64(d.Seconds())
	units := []struct {
		suffix string
		value  int64
	}{
		{"d", total / 86400},
		{"h", total % 86400 / 3600},
		{"m", total % 3600 / 60},
		{"s", total % 60},
	}

	out := ""
	for i, u := range units {
		if out == "" && u.value == 0 && i < len(units)-1 {
			continue
		}
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%d%s", u.value, u.suffix)
	}
	return out
}

// FormatStarted renders an RFC3339 timestamp as local time followed by a
// relative age, e.g. "Mon Jan 2 15:04:05 2006 (3 hours ago)".
func FormatStarted(timestamp string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format(LocalTimeFormat), humanize.RelTime(t, now, "ago", "from now"))
}
