package teamup

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// wireFormat is the datetime shape the Teamup API accepts: no fractional
// seconds, no "Z" designator. An offset suffix may follow.
const wireFormat = "2006-01-02T15:04:05"

var (
	fractionSuffix = regexp.MustCompile(`\.\d{3}Z?$`)
	dayFirst       = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})(?:[ T](\d{1,2}):(\d{2}))?$`)
)

// fallbackLayouts are tried, in order, for inputs that are neither ISO-like
// nor day-first notation.
var fallbackLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04",
	"01/02/2006",
	"January 2, 2006",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
}

// NormalizeDateTime converts a loosely-formatted date/time string into the
// wire format. Recognized shapes, first match wins:
//
//  1. empty or whitespace-only input is passed through unchanged (unset)
//  2. ISO-like input (contains both "T" and "-") has its fractional-second
//     suffix and trailing "Z" stripped; no offset is computed
//  3. day-first "D.M.YYYY" with optional "H:MM" is reassembled zero-padded,
//     time defaulting to 00:00
//  4. anything else is run through a list of common layouts and, on
//     success, rendered in UTC truncated to whole seconds
//
// Surrounding whitespace is ignored, so a padded ISO input still has its
// "Z" stripped. A nil loc selects naive output. A non-nil loc appends that
// location's ±HH:MM offset in branches 3 and 4; branch 2 trusts the
// caller's formatting either way.
func NormalizeDateTime(input string, loc *time.Location) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return input, nil
	}

	if strings.Contains(trimmed, "T") && strings.Contains(trimmed, "-") {
		out := fractionSuffix.ReplaceAllString(trimmed, "")
		return strings.TrimSuffix(out, "Z"), nil
	}

	if m := dayFirst.FindStringSubmatch(trimmed); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := m[3]
		hour, minute := 0, "00"
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			minute = m[5]
		}
		iso := fmt.Sprintf("%s-%02d-%02dT%02d:%s:00", year, month, day, hour, minute)
		if loc == nil {
			return iso, nil
		}
		t, err := time.ParseInLocation(wireFormat, iso, loc)
		if err != nil {
			return "", &UnsupportedFormatError{Input: input}
		}
		return iso + offsetSuffix(t), nil
	}

	for _, layout := range fallbackLayouts {
		t, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		if loc == nil {
			return t.UTC().Format(wireFormat), nil
		}
		local := t.In(loc)
		return local.Format(wireFormat) + offsetSuffix(local), nil
	}

	return "", &UnsupportedFormatError{Input: input}
}

// DateOnly truncates a normalized datetime to its YYYY-MM-DD prefix. Used
// for query parameters that take a bare date.
func DateOnly(normalized string) string {
	if i := strings.Index(normalized, "T"); i >= 0 {
		return normalized[:i]
	}
	return normalized
}

func offsetSuffix(t time.Time) string {
	_, secs := t.Zone()
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%02d:%02d", sign, secs/3600, (secs%3600)/60)
}
