package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d as "2 days, 3 hours, 4 minutes, 5 seconds" with
// correct singular forms, skipping zero units. A zero duration yields "".
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)

	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	seconds := int(d % time.Minute / time.Second)

	var parts []string
	for _, unit := range []struct {
		value int
		name  string
	}{
		{days, "day"},
		{hours, "hour"},
		{minutes, "minute"},
		{seconds, "second"},
	} {
		if unit.value == 0 {
			continue
		}

		if unit.value == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", unit.name))
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", unit.value, unit.name))
		}
	}

	return strings.Join(parts, ", ")
}
