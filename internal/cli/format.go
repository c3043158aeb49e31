package cli

import (
	"fmt"
	"strings"
	"time"

	"team-journal/internal/models"
	"team-journal/pkg/utils"
)

// FormatWinRate formats a win rate with its sample size, e.g. "62.5% (8)".
func FormatWinRate(rate float64, count int) string {
	return fmt.Sprintf("%s (%d)", utils.FormatPercent(rate), count)
}

// FormatStatus renders the review state of a trade for tables.
func FormatStatus(t models.Trade) string {
	switch {
	case t.IsReviewed:
		return "reviewed"
	case t.Status == models.StatusRevisionRequested:
		return "revision"
	default:
		return "pending"
	}
}

// FormatMentorScore renders a trade's score as stars, or "-" when unscored.
func FormatMentorScore(score *int) string {
	if score == nil {
		return "-"
	}
	return utils.FormatStars(*score)
}

// FormatDateTime formats a timestamp with date in loc, the trading time zone.
// A nil loc falls back to New York.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = utils.NewYorkLocation
	}
	return t.In(loc).Format("02-Jan-2006 15:04 MST")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

// FormatTags joins tags for display.
func FormatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ",")
}

// TruncateString truncates a string to max runes with ellipsis.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
