// Package timefmt formats and parses the timestamp representations used by
// ffmpeg command lines, filter expressions, and ASS subtitle documents.
package timefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Clock converts seconds to ffmpeg clock format (HH:MM:SS.mmm).
func Clock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds / 3600)
	minutes := int(seconds/60) % 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// ASS converts seconds to ASS event time format (H:MM:SS.CC), with
// centisecond precision and a single-digit hour field.
func ASS(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	cs := int(math.Round(seconds * 100))
	hours := cs / 360000
	minutes := cs / 6000 % 60
	secs := cs / 100 % 60
	rem := cs % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, rem)
}

// ParseASS converts an ASS event time (H:MM:SS.CC) back to seconds.
func ParseASS(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid ass timestamp: %s", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid ass timestamp: %s", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid ass timestamp: %s", s)
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ass timestamp: %s", s)
	}
	return float64(hours)*3600 + float64(minutes)*60 + secs, nil
}

// Seconds formats a seconds value for use inside a filter expression.
func Seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// ParseFrameRate parses frame rate from ffprobe rational format (e.g., "30/1").
func ParseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
