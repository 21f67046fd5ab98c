// Package timeparse turns partial, human-typed date/time fragments from a
// search box into precise time-range predicates. It never fails on malformed
// input: anything that is not a temporal fragment yields a nil Filter so the
// caller can try other search interpretations.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Filter is a temporal predicate: either an inclusive [Start, End] range at
// the granularity implied by the input, or a textual year-prefix match.
type Filter struct {
	// Prefix, when non-empty, matches any timestamp whose textual form
	// starts with these digits (e.g. "202" matches 2020-2029). Range
	// fields are unset in that case.
	Prefix string

	Start time.Time
	End   time.Time
}

// IsPrefix reports whether the filter is a textual prefix match
func (f *Filter) IsPrefix() bool {
	return f.Prefix != ""
}

// Matches reports whether the timestamp satisfies the predicate
func (f *Filter) Matches(t time.Time) bool {
	if f.IsPrefix() {
		return strings.HasPrefix(t.Format("2006-01-02 15:04:05"), f.Prefix)
	}
	return !t.Before(f.Start) && !t.After(f.End)
}

// Recognized full patterns, most-specific checked first at match time.
// Trailing-colon forms anchor to the open hour/minute.
var (
	reYear        = regexp.MustCompile(`^\d{4}$`)
	reYearMonth   = regexp.MustCompile(`^(\d{4})/(\d{1,2})$`)
	reDate        = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
	reDateHour    = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2}) (\d{1,2}):?$`)
	reDateHourMin = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2}) (\d{1,2}):(\d{1,2}):?$`)
	reDateFull    = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2}) (\d{1,2}):(\d{1,2}):(\d{1,2})$`)
	reTimeHMS     = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{1,2})$`)
	reTimeHM      = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)
	reTimeH       = regexp.MustCompile(`^(\d{1,2}):$`)
	reDigits      = regexp.MustCompile(`^\d+$`)
	reShortDigits = regexp.MustCompile(`^\d{1,3}$`)
)

// Parse interprets a free-text fragment as a temporal predicate. The
// returned ranges are inclusive and expressed in local time; time-only
// inputs anchor to now's calendar date. A nil result means "not a temporal
// fragment", never an error.
func Parse(term string, now time.Time) *Filter {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	// Trailing-slash partials: "2025/" is an open year-prefix match,
	// "2025/9/" a closed calendar-month range.
	if strings.HasSuffix(term, "/") {
		return parseTrailingSlash(term)
	}

	// Bare 1-3 digit numeral: prefix test against the textual timestamp,
	// not a numeric comparison.
	if reShortDigits.MatchString(term) {
		return &Filter{Prefix: term}
	}

	if reYear.MatchString(term) {
		year := atoi(term)
		return rangeFilter(
			date(year, 1, 1, 0, 0, 0),
			date(year, 12, 31, 23, 59, 59).Add(999*time.Millisecond),
		)
	}

	if m := reDateFull.FindStringSubmatch(term); m != nil {
		return unitRange(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]), time.Second)
	}

	if m := reDateHourMin.FindStringSubmatch(term); m != nil {
		return unitRange(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), 0, time.Minute)
	}

	if m := reDateHour.FindStringSubmatch(term); m != nil {
		return unitRange(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), 0, 0, time.Hour)
	}

	if m := reDate.FindStringSubmatch(term); m != nil {
		return unitRange(atoi(m[1]), atoi(m[2]), atoi(m[3]), 0, 0, 0, 24*time.Hour)
	}

	if m := reYearMonth.FindStringSubmatch(term); m != nil {
		return monthRange(atoi(m[1]), atoi(m[2]))
	}

	if m := reTimeHMS.FindStringSubmatch(term); m != nil {
		return unitRange(now.Year(), int(now.Month()), now.Day(), atoi(m[1]), atoi(m[2]), atoi(m[3]), time.Second)
	}

	if m := reTimeHM.FindStringSubmatch(term); m != nil {
		return unitRange(now.Year(), int(now.Month()), now.Day(), atoi(m[1]), atoi(m[2]), 0, time.Minute)
	}

	if m := reTimeH.FindStringSubmatch(term); m != nil {
		return unitRange(now.Year(), int(now.Month()), now.Day(), atoi(m[1]), 0, 0, time.Hour)
	}

	return nil
}

func parseTrailingSlash(term string) *Filter {
	var parts []string
	for _, p := range strings.Split(term, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 1:
		if reDigits.MatchString(parts[0]) {
			return &Filter{Prefix: parts[0]}
		}
	case 2:
		if !reDigits.MatchString(parts[0]) || !reDigits.MatchString(parts[1]) {
			return nil
		}
		year := atoi(parts[0])
		month := atoi(parts[1])
		if year < 1000 || year > 9999 {
			return nil
		}
		return monthRange(year, month)
	}
	return nil
}

// monthRange covers a full calendar month; invalid months fall through to
// no-match rather than producing a bogus range.
func monthRange(year, month int) *Filter {
	if month < 1 || month > 12 {
		return nil
	}
	start := date(year, month, 1, 0, 0, 0)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return rangeFilter(start, end)
}

// unitRange covers one unit (second/minute/hour/day) starting at the given
// local wall-clock instant, inclusive of the unit's last millisecond.
func unitRange(year, month, day, hour, min, sec int, unit time.Duration) *Filter {
	if month < 1 || month > 12 {
		return nil
	}
	start := date(year, month, day, hour, min, sec)
	var end time.Time
	if unit == 24*time.Hour {
		end = start.AddDate(0, 0, 1).Add(-time.Millisecond)
	} else {
		end = start.Add(unit - time.Millisecond)
	}
	return rangeFilter(start, end)
}

func rangeFilter(start, end time.Time) *Filter {
	return &Filter{Start: start, End: end}
}

func date(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.Local)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
