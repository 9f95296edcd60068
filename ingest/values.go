package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// serialEpoch is the spreadsheet day-zero. 1899-12-30 rather than 1899-12-31
// absorbs the 1900 leap-year bug that spreadsheet software carries, so serial
// arithmetic here matches what the cells display there.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// dateLayouts is the fixed, ordered list of string encodings the parsers try.
// European day-first forms come before US month-first forms, so an ambiguous
// value like 04/07/2024 resolves as 4 July.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
	"2 January 2006 15:04:05",
	"2 January 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

var currencyReplacer = strings.NewReplacer("£", "", "$", "", ",", "")

// ParseFloat converts a raw cell value to a float, tolerating currency
// symbols and thousands separators. Returns nil when the cell is empty or
// not numeric.
func ParseFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = currencyReplacer.Replace(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToUpper(s), "GBP"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseDateTime converts a raw cell value to a timestamp. Numeric cells are
// treated as spreadsheet serial day counts (fractional part is time of day);
// strings are tried against dateLayouts in order. Returns nil when nothing
// matches; callers skip the record rather than substitute a default.
func ParseDateTime(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t := serialEpoch.Add(time.Duration(serial * float64(24*time.Hour)))
		t = t.Round(time.Second)
		return &t
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// ParseDate is ParseDateTime truncated to midnight.
func ParseDate(raw string) *time.Time {
	t := ParseDateTime(raw)
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// ParseBool maps a closed set of affirmative tokens to true; everything
// else, including empty cells, is false.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "new", "true", "yes", "1", "y":
		return true
	}
	return false
}

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var periodPattern = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\W*(\d{4}|\d{2})\b`)

// PeriodFromName extracts a month-name/year reporting period from a sheet or
// file name (historic ad-spend exports encode the period there instead of in
// a date column). The resolved date is the last day of that month.
func PeriodFromName(name string) *time.Time {
	m := periodPattern.FindStringSubmatch(name)
	if m == nil {
		return nil
	}
	month := monthNames[strings.ToLower(m[1])]
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	if year < 100 {
		year += 2000
	}
	// Day zero of the following month is the last day of this one.
	t := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return &t
}
