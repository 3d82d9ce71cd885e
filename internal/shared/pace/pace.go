package pace

import (
	"fmt"
	"strconv"
	"strings"
)

// None is the display value for a pace that cannot be computed yet.
const None = "--:--"

// FormatMinutes renders minutes-as-float as "M:SS". Both components are
// floored so displayed and stored values never drift by a second.
func FormatMinutes(minutes float64) string {
	if minutes < 0 {
		minutes = 0
	}
	mins := int(minutes)
	secs := int((minutes - float64(mins)) * 60)
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// ParseToMinutes parses "MM:SS" or "HH:MM:SS" into minutes-as-float.
// Malformed input yields 0.
func ParseToMinutes(s string) float64 {
	parts := strings.Split(s, ":")
	nums := make([]float64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0
		}
		nums = append(nums, n)
	}
	switch len(nums) {
	case 2:
		return nums[0] + nums[1]/60
	case 3:
		return nums[0]*60 + nums[1] + nums[2]/60
	default:
		return 0
	}
}

// ToSeconds converts an "M:SS" pace string into seconds per mile.
// Returns false for empty, malformed, or the None sentinel.
func ToSeconds(s string) (int, bool) {
	if s == "" || s == None {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	mins, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	secs, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || secs < 0 || secs > 59 {
		return 0, false
	}
	return mins*60 + secs, true
}

// FromSeconds converts seconds per mile into an "M:SS" pace string.
func FromSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
