package pomodoro

import "fmt"

// FormatClock renders remaining seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatSeconds renders a study-time total in the largest sensible
// units, matching the original display: "42s", "5m 3s", "2h 10m",
// "3d 4h", "1y 12d".
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	case seconds < 86400:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	case seconds < 31536000:
		return fmt.Sprintf("%dd %dh", seconds/86400, (seconds%86400)/3600)
	default:
		return fmt.Sprintf("%dy %dd", seconds/31536000, (seconds%31536000)/86400)
	}
}
