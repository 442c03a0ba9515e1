package utils

import (
	"fmt"
	"time"
)

// FormatDuration formats d as MM:SS below an hour, HH:MM:SS below a day and "> 24h" otherwise
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case d < time.Hour:
		return fmt.Sprintf("%02d:%02d", minutes, seconds)
	case d < 24*time.Hour:
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	default:
		return "> 24h"
	}
}

// FormatSeconds is FormatDuration for a length in whole seconds
func FormatSeconds(seconds int) string {
	return FormatDuration(time.Duration(seconds) * time.Second)
}
