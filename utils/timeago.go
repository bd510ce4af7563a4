package utils

import (
	"fmt"
	"time"
)

// TimeAgo renders a timestamp the way the dashboards expect it,
// e.g. "3 hours ago" or "Just now".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "Recently"
	}

	diff := time.Since(t)
	days := int(diff.Hours() / 24)
	hours := int(diff.Hours())
	mins := int(diff.Minutes())

	switch {
	case days > 0:
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	case hours > 0:
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case mins > 0:
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	default:
		return "Just now"
	}
}

// TimeUntil is the forward-looking counterpart, e.g. "in 2 days". Anything
// closer than an hour, or already past, reads "Soon".
func TimeUntil(t time.Time) string {
	if t.IsZero() {
		return "Recently"
	}

	diff := time.Until(t)
	days := int(diff.Hours() / 24)
	hours := int(diff.Hours())

	switch {
	case days > 0:
		return fmt.Sprintf("in %d day%s", days, plural(days))
	case hours > 0:
		return fmt.Sprintf("in %d hour%s", hours, plural(hours))
	default:
		return "Soon"
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
