// Package speechrate holds the narration pacing heuristics used to size
// scripts and estimate audio length before anything is synthesized.
package speechrate

import (
	"time"
	"unicode"
	"unicode/utf8"
)

// CharsPerMinute is the narration rate scripts are sized against.
const CharsPerMinute = 200

// ExpectedChars is the script length that fills the given minutes.
func ExpectedChars(minutes int) int {
	return minutes * CharsPerMinute
}

// EstimateDuration approximates spoken length of text at the given speed
// multiplier (1.0 is normal). Whitespace is not counted.
func EstimateDuration(text string, speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	minutes := float64(n) / CharsPerMinute / speed
	return time.Duration(minutes * float64(time.Minute))
}

// TooLong reports whether text exceeds 1.5x the expected length for minutes.
func TooLong(text string, minutes int) bool {
	return utf8.RuneCountInString(text)*2 > ExpectedChars(minutes)*3
}
