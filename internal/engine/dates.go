package engine

import (
	"fmt"
	"strings"
	"time"

	// Europe/Kyiv must resolve on hosts without a zoneinfo database
	_ "time/tzdata"
)

// QueryDateLayout is the layout of the news page "date" parameter
const QueryDateLayout = "02-01-2006"

const publishedLayout = "2 January 2006, 15:04"

// ukrainianMonths maps genitive month names to their English equivalents
var ukrainianMonths = []struct {
	ua, en string
}{
	{"січня", "January"},
	{"лютого", "February"},
	{"березня", "March"},
	{"квітня", "April"},
	{"травня", "May"},
	{"червня", "June"},
	{"липня", "July"},
	{"серпня", "August"},
	{"вересня", "September"},
	{"жовтня", "October"},
	{"листопада", "November"},
	{"грудня", "December"},
}

// Kyiv is the portal's time zone
var Kyiv = loadKyiv()

func loadKyiv() *time.Location {
	loc, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		return time.FixedZone("EET", 2*60*60)
	}
	return loc
}

// ParseDate converts a publication date such as "5 березня 2024, 14:30"
// into a time in Kyiv local time.
func ParseDate(s string) (time.Time, error) {
	normalized := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	for _, m := range ukrainianMonths {
		if !strings.Contains(normalized, m.ua) {
			continue
		}
		normalized = strings.Replace(normalized, m.ua, m.en, 1)
		// tolerate a missing comma between the year and the time
		normalized = strings.Replace(normalized, " ,", ",", 1)
		t, err := time.ParseInLocation(publishedLayout, normalized, Kyiv)
		if err != nil {
			withComma := addTimeComma(normalized)
			if t2, err2 := time.ParseInLocation(publishedLayout, withComma, Kyiv); err2 == nil {
				return t2, nil
			}
			return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrParseError, s, err)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: did not find a month in %q", ErrParseError, s)
}

// addTimeComma turns "5 March 2024 14:30" into "5 March 2024, 14:30"
func addTimeComma(s string) string {
	parts := strings.Fields(s)
	if len(parts) != 4 || strings.HasSuffix(parts[2], ",") {
		return s
	}
	return fmt.Sprintf("%s %s %s, %s", parts[0], parts[1], parts[2], parts[3])
}

// FormatQueryDate renders a day as DD-MM-YYYY
func FormatQueryDate(t time.Time) string {
	return t.Format(QueryDateLayout)
}

// ParseQueryDate parses a DD-MM-YYYY day in Kyiv time
func ParseQueryDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(QueryDateLayout, strings.TrimSpace(s), Kyiv)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected DD-MM-YYYY): %w", s, err)
	}
	return t, nil
}

// Days lists every calendar day from "from" to "to", inclusive
func Days(from, to time.Time) []time.Time {
	from = truncateDay(from)
	to = truncateDay(to)

	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.In(Kyiv).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Kyiv)
}
