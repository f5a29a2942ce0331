package datetime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // reference zone must resolve without system tzdata
)

// DefaultZone is the reference zone for the full written form.
const DefaultZone = "Europe/Copenhagen"

// solrTimeLayout is the second-granularity Zulu form used by Solr.
const solrTimeLayout = "2006-01-02T15:04:05Z"

var (
	// ErrEmptyInput indicates a blank input.
	ErrEmptyInput = errors.New("empty date")

	// ErrUnparseable indicates that no recogniser matched.
	ErrUnparseable = errors.New("unparseable date")
)

// Normalizer converts date strings using a fixed reference zone.
// It is immutable and safe for concurrent use.
type Normalizer struct {
	loc *time.Location
}

// New creates a Normalizer for the given reference zone. A nil loc means UTC.
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// NewForZone creates a Normalizer for the named IANA zone.
func NewForZone(name string) (*Normalizer, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", name, err)
	}
	return New(loc), nil
}

var defaultNormalizer = func() *Normalizer {
	n, err := NewForZone(DefaultZone)
	if err != nil {
		panic(err)
	}
	return n
}()

// Default returns the Normalizer for DefaultZone.
func Default() *Normalizer {
	return defaultNormalizer
}

// Location returns the reference zone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

type pointOptions struct {
	unpadded bool
}

// PointOption adjusts UTCTime.
type PointOption func(*pointOptions)

// WithoutPadding keeps the precision of the input instead of padding to
// seconds: "2019-10" stays "2019-10". The full written form always carries
// seconds.
func WithoutPadding() PointOption {
	return func(o *pointOptions) { o.unpadded = true }
}

// UTCTime converts input to a single point in time. Ranges are not accepted.
func (n *Normalizer) UTCTime(input string, opts ...PointOption) (string, error) {
	var o pointOptions
	for _, opt := range opts {
		opt(&o)
	}
	return n.normalise(input, false, !o.unpadded)
}

// UTCTimeRange converts input to a DateRangeField value.
func (n *Normalizer) UTCTimeRange(input string) (string, error) {
	return n.normalise(input, true, false)
}

func (n *Normalizer) normalise(input string, allowRange, pad bool) (string, error) {
	value := strings.TrimSpace(input)
	if value == "" {
		return "", ErrEmptyInput
	}
	for _, r := range recognisers {
		if r.isRange && !allowRange {
			continue
		}
		m := r.re.FindStringSubmatch(value)
		if m == nil {
			continue
		}
		out, ok := r.convert(n, m, pad)
		if !ok {
			// A recogniser that matched syntactically but not semantically
			// still ends the search.
			return "", fmt.Errorf("%q as %s: %w", value, r.name, ErrUnparseable)
		}
		return out, nil
	}
	return "", fmt.Errorf("%q: %w", value, ErrUnparseable)
}

// UTCTime converts input with the default Normalizer.
func UTCTime(input string, opts ...PointOption) (string, error) {
	return defaultNormalizer.UTCTime(input, opts...)
}

// UTCTimeRange converts input with the default Normalizer.
func UTCTimeRange(input string) (string, error) {
	return defaultNormalizer.UTCTimeRange(input)
}

type recogniser struct {
	name    string
	re      *regexp.Regexp
	isRange bool
	convert func(n *Normalizer, m []string, pad bool) (string, bool)
}

const (
	monthRe = `(0[1-9]|1[0-2])`
	dayRe   = `(0[1-9]|[12][0-9]|3[01])`
)

var recognisers = []recogniser{
	{
		name:    "written form",
		re:      regexp.MustCompile(`^(\pL+)\.?,?\s+(\pL+)\.?\s+(\d{1,2})\s+(\d{1,2}):(\d{2}):(\d{2})\s+([A-Za-z]{1,5})\s+(\d{4})$`),
		convert: (*Normalizer).writtenForm,
	},
	{
		name: "year",
		re:   regexp.MustCompile(`^(\d{4})$`),
		convert: func(_ *Normalizer, m []string, pad bool) (string, bool) {
			if pad {
				return m[1] + "-01-01T00:00:00Z", true
			}
			return m[1], true
		},
	},
	{
		name: "year-month",
		re:   regexp.MustCompile(`^(\d{4})\D` + monthRe + `$`),
		convert: func(_ *Normalizer, m []string, pad bool) (string, bool) {
			if pad {
				return m[1] + "-" + m[2] + "-01T00:00:00Z", true
			}
			return m[1] + "-" + m[2], true
		},
	},
	{
		name: "year-month-day",
		re:   regexp.MustCompile(`^(\d{4})\D` + monthRe + `\D` + dayRe + `$`),
		convert: func(_ *Normalizer, m []string, pad bool) (string, bool) {
			if pad {
				return m[1] + "-" + m[2] + "-" + m[3] + "T00:00:00Z", true
			}
			return m[1] + "-" + m[2] + "-" + m[3], true
		},
	},
	{
		name:    "year range",
		re:      regexp.MustCompile(`^(\d{4})\D(\d{4})$`),
		isRange: true,
		convert: func(_ *Normalizer, m []string, _ bool) (string, bool) {
			return rangeExpr(m[1], m[2]), true
		},
	},
	{
		name:    "abbreviated year range",
		re:      regexp.MustCompile(`^(\d{4})\D(1[3-9]|[2-9][0-9])$`),
		isRange: true,
		convert: func(_ *Normalizer, m []string, _ bool) (string, bool) {
			return rangeExpr(m[1], m[1][:2]+m[2]), true
		},
	},
}

func rangeExpr(start, end string) string {
	return "[" + start + " TO " + end + "]"
}

// writtenForm handles "Thu Nov 09 15:47:04 CET 2017". The weekday must be
// a known name but is not cross-checked against the date.
func (n *Normalizer) writtenForm(m []string, _ bool) (string, bool) {
	if _, ok := weekdays[strings.ToLower(m[1])]; !ok {
		return "", false
	}
	month, ok := months[strings.ToLower(m[2])]
	if !ok {
		return "", false
	}
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	second, _ := strconv.Atoi(m[6])
	year, _ := strconv.Atoi(m[8])
	if hour > 23 || minute > 59 || second > 59 {
		return "", false
	}

	t := time.Date(year, month, day, hour, minute, second, 0, n.loc)
	if t.Day() != day || t.Month() != month {
		return "", false
	}
	return t.UTC().Format(solrTimeLayout), true
}

// Month and weekday names accepted by the written form, English and Danish,
// full or three-letter abbreviated.
var (
	months   = nameTable(monthNames)
	weekdays = nameTable(weekdayNames)
)

var monthNames = map[time.Month][]string{
	time.January:   {"january", "januar"},
	time.February:  {"february", "februar"},
	time.March:     {"march", "marts"},
	time.April:     {"april"},
	time.May:       {"may", "maj"},
	time.June:      {"june", "juni"},
	time.July:      {"july", "juli"},
	time.August:    {"august"},
	time.September: {"september"},
	time.October:   {"october", "oktober"},
	time.November:  {"november"},
	time.December:  {"december"},
}

var weekdayNames = map[time.Weekday][]string{
	time.Monday:    {"monday", "mandag"},
	time.Tuesday:   {"tuesday", "tirsdag"},
	time.Wednesday: {"wednesday", "onsdag"},
	time.Thursday:  {"thursday", "torsdag"},
	time.Friday:    {"friday", "fredag"},
	time.Saturday:  {"saturday", "lørdag"},
	time.Sunday:    {"sunday", "søndag"},
}

func nameTable[K comparable](names map[K][]string) map[string]K {
	out := make(map[string]K)
	for k, list := range names {
		for _, name := range list {
			out[name] = k
			out[string([]rune(name)[:3])] = k
		}
	}
	return out
}
