package export

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// headerDialect recognizes one timestamp layout at the start of an export line.
// Dialects are tried in order; the first structural match wins, even when a
// later dialect would also match. Day-first is assumed by convention, so a
// month-first export parses with day and month swapped. This is a documented
// limitation of offline exports, which carry no locale information.
type headerDialect struct {
	name string
	re   *regexp.Regexp
}

// Capture groups for every dialect: day, month, year, hour, minute,
// optional second, optional AM/PM marker.
var headerDialects = []headerDialect{
	{
		// [01/02/24, 09:00:00] or [01/02/2024, 09:00]
		name: "bracketed-24h",
		re:   regexp.MustCompile(`^\[(\d{1,2})/(\d{1,2})/(\d{2,4}),?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?()\]\s?`),
	},
	{
		// [1/2/24, 9:00:00 PM]
		name: "bracketed-12h",
		re:   regexp.MustCompile(`^\[(\d{1,2})/(\d{1,2})/(\d{2,4}),?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp])\.?[Mm]\.?\]\s?`),
	},
	{
		// 01.02.24, 09:00 -
		name: "dotted",
		re:   regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{2,4}),?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?()\s+-\s`),
	},
	{
		// 01/02/24, 09:00 -  (optionally with AM/PM)
		name: "dashed",
		re:   regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4}),?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp]?)\.?[Mm]?\.?\s+-\s`),
	},
}

// MatchHeader attempts each timestamp dialect against the start of line.
// On success it returns the instant in Unix milliseconds and the unconsumed
// remainder of the line.
func MatchHeader(line string) (ts int64, rest string, ok bool) {
	for _, d := range headerDialects {
		m := d.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := resolveYear(m[3])
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		second := 0
		if m[6] != "" {
			second, _ = strconv.Atoi(m[6])
		}
		hour = resolveHour(hour, m[7])

		t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
		return t.UnixMilli(), line[len(m[0]):], true
	}
	return 0, line, false
}

// HasHeader reports whether line starts with any recognized timestamp shape.
// Used by intake sampling, which needs the verdict without the instant.
func HasHeader(line string) bool {
	for _, d := range headerDialects {
		if d.re.MatchString(line) {
			return true
		}
	}
	return false
}

// resolveYear expands two-digit years with a 50-year pivot: 49 is 2049,
// 50 is 1950.
func resolveYear(s string) int {
	y, _ := strconv.Atoi(s)
	if len(s) > 2 {
		return y
	}
	if y < 50 {
		return 2000 + y
	}
	return 1900 + y
}

// resolveHour normalizes a 12-hour clock marker: 12 AM is 00, 12 PM is 12.
func resolveHour(hour int, marker string) int {
	if marker == "" {
		return hour
	}
	pm := strings.EqualFold(marker, "p")
	if hour == 12 {
		hour = 0
	}
	if pm {
		hour += 12
	}
	return hour
}
