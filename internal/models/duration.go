package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSeconds renders a duration in seconds as M:SS, or H:MM:SS from one
// hour upward. Negative input is treated as zero.
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// NormalizeDuration converts any wire duration representation into the
// display form. Accepts numeric seconds ("125"), M:SS, and H:MM:SS input.
// Unparseable input yields "0:00" rather than an error.
func NormalizeDuration(raw string) string {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil {
		return FormatSeconds(secs)
	}
	if secs, ok := durationSeconds(raw); ok {
		return FormatSeconds(secs)
	}
	return "0:00"
}

// DurationSeconds parses a display duration back into seconds.
// Unparseable input yields 0.
func DurationSeconds(display string) int {
	if secs, ok := durationSeconds(display); ok {
		return secs
	}
	return 0
}

func durationSeconds(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

// SumDurations returns the combined display duration of the given songs,
// used to recompute a playlist's duration from its contents.
func SumDurations(songs []Song) string {
	total := 0
	for _, s := range songs {
		total += DurationSeconds(s.Duration)
	}
	return FormatSeconds(total)
}

// EmailHandle derives a username handle from an email address.
func EmailHandle(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
