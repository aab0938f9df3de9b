package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	ordinalRegex = regexp.MustCompile(`(\d+)(st|nd|rd|th)\b`)
	bracketRegex = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]`)
	// Trailing clock time and whatever follows it: "at 10:00 PM", "10:00 PM EDT", "10 PM ET".
	clockRegex = regexp.MustCompile(`(?i)\s+(at\s+.*|\d{1,2}(:\d{2})?\s*(am|pm)\b.*|\d{1,2}:\d{2}.*)$`)
	yearRegex  = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	dateLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"January 2, 2006",
		"Jan 2, 2006",
		"January 2 2006",
		"Jan 2 2006",
		"Monday, January 2, 2006",
		"Mon, January 2, 2006",
		"Mon, Jan 2, 2006",
		"2 January 2006",
		"2 Jan 2006",
		"01/02/2006",
		"1/2/2006",
	}

	dateParser = newDateParser()
)

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseEventDate derives a calendar date (midnight UTC) from an event's free-text
// date. Known layouts are tried first, on the raw text and again with any trailing
// clock time or bracketed note removed, then natural-language parsing relative to now.
// A year written in the text always wins over the one the fallback infers.
// Returns nil when nothing matches.
func ParseEventDate(text string, now time.Time) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	cleaned := ordinalRegex.ReplaceAllString(text, "$1")

	for _, candidate := range []string{cleaned, stripTimeOfDay(cleaned)} {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return dayOf(t)
			}
		}
	}

	r, err := dateParser.Parse(cleaned, now)
	if err != nil || r == nil {
		return nil
	}
	return pinWrittenYear(dayOf(r.Time), text)
}

func stripTimeOfDay(text string) string {
	text = bracketRegex.ReplaceAllString(text, "")
	text = clockRegex.ReplaceAllString(text, "")
	return strings.TrimRight(strings.TrimSpace(text), ",")
}

// pinWrittenYear replaces the year of d with the first four-digit year in text.
func pinWrittenYear(d *time.Time, text string) *time.Time {
	m := yearRegex.FindString(text)
	if m == "" {
		return d
	}
	year, err := strconv.Atoi(m)
	if err != nil || year == d.Year() {
		return d
	}
	pinned := time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if pinned.Month() != d.Month() {
		// Feb 29 moved onto a non-leap year.
		return nil
	}
	return &pinned
}

func dayOf(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
