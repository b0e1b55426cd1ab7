package models

import "fmt"

// FormatDuration renders milliseconds as M:SS, truncating partial seconds.
// Zero and negative values render as Placeholder.
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return Placeholder
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// YesNo renders a boolean flag for tables
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
