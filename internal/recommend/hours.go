package recommend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimeRange = errors.New("invalid time range label")

// TimeWindowLabels is the closed set of visit windows offered by the form.
var TimeWindowLabels = []string{
	"07~09시", "09~11시", "11~13시", "13~15시",
	"15~17시", "17~19시", "19~21시", "21~23시",
}

// IsTimeWindowLabel reports whether label is one of TimeWindowLabels.
func IsTimeWindowLabel(label string) bool {
	for _, known := range TimeWindowLabels {
		if known == label {
			return true
		}
	}
	return false
}

// ParseTimeRanges expands labels like "11~13시" into the hours [start, end),
// concatenated in label order.
func ParseTimeRanges(labels []string) ([]int, error) {
	hours := make([]int, 0, len(labels)*2)
	for _, label := range labels {
		start, end, err := parseTimeRange(label)
		if err != nil {
			return nil, err
		}
		for hour := start; hour < end; hour++ {
			hours = append(hours, hour)
		}
	}
	return hours, nil
}

func parseTimeRange(label string) (int, int, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(label, "시", ""))
	startRaw, endRaw, ok := strings.Cut(trimmed, "~")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, label)
	}
	start, err := strconv.Atoi(strings.TrimSpace(startRaw))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeRange, label, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(endRaw))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeRange, label, err)
	}
	if start < 0 || end > 24 || start >= end {
		return 0, 0, fmt.Errorf("%w: %q out of order or range", ErrInvalidTimeRange, label)
	}
	return start, end, nil
}

// HourPolicy decides which hours are scored when no time window is selected.
type HourPolicy string

const (
	// HourPolicyFullDay scores all 24 hours.
	HourPolicyFullDay HourPolicy = "full_day"
	// HourPolicyCurrentHour scores the current hour and the one after it.
	HourPolicyCurrentHour HourPolicy = "current_hour"
)

func ParseHourPolicy(input string) (HourPolicy, error) {
	switch HourPolicy(strings.ToLower(strings.TrimSpace(input))) {
	case HourPolicyFullDay, "":
		return HourPolicyFullDay, nil
	case HourPolicyCurrentHour:
		return HourPolicyCurrentHour, nil
	default:
		return "", fmt.Errorf("unknown hour policy %q", input)
	}
}

// DefaultHours returns the fallback hour set for policy at time now.
//
// With HourPolicyCurrentHour at 23:xx the second hour is 24, which matches no
// key; the window does not wrap into the next day.
func DefaultHours(policy HourPolicy, now time.Time) []int {
	if policy == HourPolicyCurrentHour {
		hour := now.Hour()
		return []int{hour, hour + 1}
	}
	hours := make([]int, 24)
	for i := range hours {
		hours[i] = i
	}
	return hours
}
