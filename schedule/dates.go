package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only calendar format the ledger accepts: DD-MM-YYYY.
const DateLayout = "02-01-2006"

// Relative dates ("tomorrow") resolve against this anchor rather than wall
// clock, so the demo ledger and the prompts stay in agreement.
var relativeDateAnchor = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	datePattern      = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	looseDatePattern = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
	timePattern      = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)
)

// ValidateDate rejects anything that is not a real DD-MM-YYYY calendar date.
func ValidateDate(date string) error {
	if !datePattern.MatchString(date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// NormalizeDate zero-pads loose day/month input ("2-1-2024" -> "02-01-2024")
// and validates the result.
func NormalizeDate(raw string) (string, error) {
	m := looseDatePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	date := fmt.Sprintf("%02d-%02d-%s", day, month, m[3])
	if err := ValidateDate(date); err != nil {
		return "", err
	}
	return date, nil
}

// NormalizeTime accepts "9:00", "09:00", and the ledger's legacy "9.00"
// form, returning the canonical H:MM rendering without a leading zero.
func NormalizeTime(raw string) (string, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	return fmt.Sprintf("%d:%02d", hour, minute), nil
}

// ResolveRelativeDate turns relative phrasing in free text into a ledger
// date. Explicit D-M-YYYY dates win over keywords; text carrying neither
// reports false rather than guessing.
func ResolveRelativeDate(text string) (string, bool) {
	lower := strings.ToLower(text)

	if date, err := NormalizeDate(lower); err == nil {
		return date, true
	}

	switch {
	case strings.Contains(lower, "day after tomorrow"):
		return relativeDateAnchor.AddDate(0, 0, 2).Format(DateLayout), true
	case strings.Contains(lower, "tomorrow"):
		return relativeDateAnchor.AddDate(0, 0, 1).Format(DateLayout), true
	case strings.Contains(lower, "today"):
		return relativeDateAnchor.Format(DateLayout), true
	case strings.Contains(lower, "next week"):
		return relativeDateAnchor.AddDate(0, 0, 7).Format(DateLayout), true
	default:
		return "", false
	}
}

// ExtractSpecialization scans free text for a specialization mention.
// Longer synonyms are tried first so "cosmetic dentist" does not collapse
// into the bare "dentist" mapping.
func ExtractSpecialization(text string) (string, bool) {
	lower := strings.ToLower(text)
	keywords := make([]string, 0, len(specializationSynonyms))
	for k := range specializationSynonyms {
		keywords = append(keywords, k)
	}
	sort.Slice(keywords, func(i, j int) bool {
		return len(keywords[i]) > len(keywords[j])
	})
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return specializationSynonyms[k], true
		}
	}
	return "", false
}

// ExtractDoctor scans free text for a roster doctor name.
func ExtractDoctor(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, name := range Doctors() {
		if strings.Contains(lower, name) {
			return name, true
		}
	}
	return "", false
}

// FormatClock12 renders a ledger time as 12-hour AM/PM for summaries.
func FormatClock12(slotTime string) string {
	m := timePattern.FindStringSubmatch(slotTime)
	if m == nil {
		return slotTime
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, period)
}
