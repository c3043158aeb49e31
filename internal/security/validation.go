package security

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"team-journal/internal/errors"
	"team-journal/internal/models"
)

// Field limits
const (
	MaxNoteLength        = 2000
	MaxMentorNotesLength = 2000
	MaxTags              = 10
	MaxTagLength         = 32
	MaxDisplayNameLength = 50
	MaxChartURLLength    = 2048
	MaxAbsResult         = 50.0
)

// Validation patterns
var (
	// Pair pattern: uppercase letters and digits, separators stripped
	pairPattern = regexp.MustCompile(`^[A-Z0-9]{3,12}$`)

	// Tag pattern: letters, digits and a few joiners
	tagPattern = regexp.MustCompile(`^[\p{L}\p{N} _+#.-]{1,32}$`)

	// SQL injection patterns
	sqlInjectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(union\s+select|select\s+\*|drop\s+table|insert\s+into|delete\s+from|update\s+.*\s+set)`),
		regexp.MustCompile(`(?i)(--|;|\\x00)`),
		regexp.MustCompile(`(?i)(or\s+1\s*=\s*1|and\s+1\s*=\s*1)`),
	}

	// Command injection patterns
	cmdInjectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[;&|$\x60]`),
		regexp.MustCompile(`(?i)(rm\s+-rf|sh\s+-c)`),
	}

	// Secret patterns for masking (not validation)
	secretPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(secret|token|bearer)[=:\s]+["']?([A-Za-z0-9_\-\.]{16,})["']?`),
		regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), // JWTs
	}
)

// InputValidator provides input validation for journal writes.
type InputValidator struct {
	strictMode bool
}

// NewInputValidator creates a new input validator. Strict mode also screens
// free text for injection patterns.
func NewInputValidator(strictMode bool) *InputValidator {
	return &InputValidator{strictMode: strictMode}
}

func invalid(field string, value interface{}, msg string) *errors.ValidationError {
	return errors.NewValidationError(field, value, msg)
}

// ValidatePair validates a normalized instrument symbol such as EURUSD or XAUUSD.
func (v *InputValidator) ValidatePair(pair string) error {
	if pair == "" {
		return invalid("pair", pair, "pair cannot be empty")
	}
	if !pairPattern.MatchString(pair) {
		return invalid("pair", pair, "invalid pair format")
	}
	return nil
}

// ValidateDisplayName validates a profile display name.
func (v *InputValidator) ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return invalid("display_name", name, "display name cannot be empty")
	}
	if len([]rune(name)) > MaxDisplayNameLength {
		return invalid("display_name", name, fmt.Sprintf("display name too long (max %d characters)", MaxDisplayNameLength))
	}
	if v.containsInjection(name) {
		return invalid("display_name", name, "invalid characters detected")
	}
	return nil
}

// ValidateChartURL requires an absolute http(s) URL.
func (v *InputValidator) ValidateChartURL(raw string) error {
	if raw == "" {
		return invalid("chart_url", raw, "chart URL is required")
	}
	if len(raw) > MaxChartURLLength {
		return invalid("chart_url", raw[:50]+"...", "chart URL too long")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid("chart_url", raw, "chart URL must be an absolute http(s) URL")
	}
	return nil
}

// ValidateNotes validates free-form text such as trade notes or mentor notes.
func (v *InputValidator) ValidateNotes(field, text string, maxLen int) error {
	if len([]rune(text)) > maxLen {
		return invalid(field, truncate(text, 50), fmt.Sprintf("text too long (max %d characters)", maxLen))
	}
	if v.strictMode && v.containsInjection(text) {
		return invalid(field, MaskSensitive(truncate(text, 50)), "potentially dangerous content detected")
	}
	return nil
}

// ValidateTags validates the free-text tag list.
func (v *InputValidator) ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return invalid("tags", len(tags), fmt.Sprintf("too many tags (max %d)", MaxTags))
	}
	for _, tag := range tags {
		if !tagPattern.MatchString(tag) {
			return invalid("tags", tag, "invalid tag")
		}
	}
	return nil
}

// ValidateResult validates a realized R value.
func (v *InputValidator) ValidateResult(result float64) error {
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return invalid("result", result, "result must be a finite number")
	}
	if math.Abs(result) > MaxAbsResult {
		return invalid("result", result, fmt.Sprintf("result exceeds %.0fR", MaxAbsResult))
	}
	return nil
}

// ValidateTradeDraft checks every content field of a trade. today is the current
// New York trading day; trades cannot be logged for a later day.
func (v *InputValidator) ValidateTradeDraft(d models.TradeDraft, today models.Date) error {
	if d.TradeDate.IsZero() {
		return invalid("trade_date", "", "trade date is required")
	}
	if today.Before(d.TradeDate) {
		return invalid("trade_date", d.TradeDate.String(), "trade date cannot be in the future")
	}
	if !d.Session.Valid() {
		return invalid("session", d.Session, "unknown session")
	}
	if err := v.ValidatePair(d.Pair); err != nil {
		return err
	}
	if !d.Bias.Valid() {
		return invalid("bias", d.Bias, "unknown bias")
	}
	if !d.DailyBias.Valid() {
		return invalid("daily_bias", d.DailyBias, "unknown daily bias")
	}
	if !d.Framework.Valid() {
		return invalid("framework", d.Framework, "unknown framework")
	}
	if !d.Profiling.Valid() {
		return invalid("profiling", d.Profiling, "unknown profiling")
	}
	if !d.Profiling.AllowsEntryModel(d.EntryModel) {
		return invalid("entry_model", d.EntryModel, fmt.Sprintf("entry model not allowed for %s", d.Profiling))
	}
	if !d.Outcome.Valid() {
		return invalid("outcome", d.Outcome, "unknown outcome")
	}
	if err := v.ValidateResult(d.Result); err != nil {
		return err
	}
	if !d.Mood.Valid() {
		return invalid("mood", d.Mood, "unknown mood")
	}
	if err := v.ValidateChartURL(d.ChartURL); err != nil {
		return err
	}
	if err := v.ValidateNotes("note", d.Note, MaxNoteLength); err != nil {
		return err
	}
	return v.ValidateTags(d.Tags)
}

// containsInjection checks for SQL or command injection patterns.
func (v *InputValidator) containsInjection(input string) bool {
	for _, pattern := range sqlInjectionPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	for _, pattern := range cmdInjectionPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}

// SanitizePair uppercases a pair and strips separators, so "eur/usd" becomes "EURUSD".
func SanitizePair(pair string) string {
	pair = strings.TrimSpace(strings.ToUpper(pair))

	var result strings.Builder
	for _, r := range pair {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// SanitizeText removes control characters other than newlines and tabs, and trims the ends.
func SanitizeText(text string) string {
	var result strings.Builder
	for _, r := range text {
		if r == '\n' || r == '\t' || (r >= 32 && r != 127) {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// SanitizeTags trims tags, drops empties and removes case-insensitive duplicates.
func SanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SanitizeDraft normalizes the user-entered text fields of a draft.
func SanitizeDraft(d models.TradeDraft) models.TradeDraft {
	d.Pair = SanitizePair(d.Pair)
	d.ChartURL = strings.TrimSpace(d.ChartURL)
	d.Note = SanitizeText(d.Note)
	d.Tags = SanitizeTags(d.Tags)
	return d
}

// MaskSensitive masks tokens and secrets in a string.
func MaskSensitive(input string) string {
	result := input
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			if len(match) > 8 {
				return match[:4] + strings.Repeat("*", len(match)-8) + match[len(match)-4:]
			}
			return strings.Repeat("*", len(match))
		})
	}
	return result
}

// MaskCredential masks a credential value for logging.
func MaskCredential(value string) string {
	if len(value) == 0 {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
