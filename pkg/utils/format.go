// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
)

// RoundTo rounds value to the given number of decimal places.
func RoundTo(value float64, places int) float64 {
	multiplier := math.Pow(10, float64(places))
	return math.Round(value*multiplier) / multiplier
}

// FormatR formats a risk multiple with sign and one decimal, e.g. "+1.5R", "-2.0R".
func FormatR(r float64) string {
	rounded := RoundTo(r, 1)
	if rounded == 0 {
		return "0.0R"
	}
	sign := ""
	if rounded > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1fR", sign, rounded)
}

// FormatPercent formats a percentage without sign.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// FormatScore formats an average review score; zero means no scored trades.
func FormatScore(score float64) string {
	if score == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", score)
}

// FormatStars renders a 1-5 score as stars.
func FormatStars(score int) string {
	if score < 0 {
		score = 0
	}
	if score > 5 {
		score = 5
	}
	stars := ""
	for i := 0; i < 5; i++ {
		if i < score {
			stars += "★"
		} else {
			stars += "☆"
		}
	}
	return stars
}
