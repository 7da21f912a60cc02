package util

import (
	"fmt"
	"strings"
	"time"
)

var binaryUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatBytes converts a byte count into a human-readable string using the
// binary units directory indexes like Myrient print.
func FormatBytes(bytes int64, decimals int) string {
	if bytes <= 0 {
		return "0 B"
	}
	if decimals < 0 {
		decimals = 0
	}

	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(binaryUnits)-1 {
		value /= 1024
		i++
	}

	return fmt.Sprintf("%.*f %s", decimals, value, binaryUnits[i])
}

// FormatSize formats an optional size; unknown sizes render as "-".
func FormatSize(size *int64) string {
	if size == nil {
		return "-"
	}
	return FormatBytes(*size, 1)
}

// CalculateETA estimates remaining time given current/total and start time.
func CalculateETA(current, total int64, startTime time.Time) string {
	return formatETA(current, total, time.Since(startTime))
}

func formatETA(current, total int64, elapsed time.Duration) string {
	if current <= 0 || total <= 0 || current >= total {
		return "--"
	}

	ratio := float64(current) / float64(total)
	remaining := time.Duration(float64(elapsed)/ratio) - elapsed
	if remaining < 0 {
		remaining = 0
	}

	sec := int(remaining.Seconds())
	min := sec / 60
	hr := min / 60

	var b strings.Builder
	if hr > 0 {
		fmt.Fprintf(&b, "%dh ", hr)
	}
	if min%60 > 0 {
		fmt.Fprintf(&b, "%dm ", min%60)
	}
	if sec%60 > 0 || b.Len() == 0 {
		fmt.Fprintf(&b, "%ds", sec%60)
	}
	return strings.TrimSpace(b.String())
}
