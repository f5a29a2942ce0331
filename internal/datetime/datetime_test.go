package datetime

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTCTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"written form winter", "Thu Nov 09 15:47:04 CET 2017", "2017-11-09T14:47:04Z"},
		{"written form summer", "Fri Oct 04 10:05:10 CET 2019", "2019-10-04T08:05:10Z"},
		{"written form danish", "tor nov 09 15:47:04 CET 2017", "2017-11-09T14:47:04Z"},
		{"year", "2019", "2019-01-01T00:00:00Z"},
		{"year month", "2019-10", "2019-10-01T00:00:00Z"},
		{"year month dot", "1947.03", "1947-03-01T00:00:00Z"},
		{"full date", "2019-10-30", "2019-10-30T00:00:00Z"},
		{"full date dots", "1978.08.30", "1978-08-30T00:00:00Z"},
		{"day not checked against month", "2019-02-31", "2019-02-31T00:00:00Z"},
		{"surrounding whitespace", "  2019 ", "2019-01-01T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UTCTime(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUTCTime_WithoutPadding(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2019", "2019"},
		{"2019-10", "2019-10"},
		{"1978.08.30", "1978-08-30"},
		{"Thu Nov 09 15:47:04 CET 2017", "2017-11-09T14:47:04Z"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := UTCTime(tt.input, WithoutPadding())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUTCTime_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"range", "1972-1979"},
		{"abbreviated range", "1897-98"},
		{"disjunction", "1838 eller 1898"},
		{"month out of range", "2019-13-01"},
		{"day out of range", "2019-10-32"},
		{"three digit year", "201"},
		{"text", "unknown"},
		{"unknown weekday", "Xyz Nov 09 15:47:04 CET 2017"},
		{"unknown month", "Thu Xyz 09 15:47:04 CET 2017"},
		{"hour out of range", "Thu Nov 09 25:47:04 CET 2017"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UTCTime(tt.input)
			assert.ErrorIs(t, err, ErrUnparseable)
		})
	}
}

func TestUTCTime_Empty(t *testing.T) {
	for _, input := range []string{"", "   "} {
		_, err := UTCTime(input)
		assert.ErrorIs(t, err, ErrEmptyInput)

		_, err = UTCTimeRange(input)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestUTCTimeRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"year", "2019", "2019"},
		{"year month", "2019-10", "2019-10"},
		{"full date", "2019-10-30", "2019-10-30"},
		{"full date dots", "1978.08.30", "1978-08-30"},
		{"written form", "Thu Nov 09 15:47:04 CET 2017", "2017-11-09T14:47:04Z"},
		{"range", "1972-1979", "[1972 TO 1979]"},
		{"range slash", "1972/1979", "[1972 TO 1979]"},
		{"abbreviated range", "1897-98", "[1897 TO 1898]"},
		{"abbreviated range lower bound", "1900-13", "[1900 TO 1913]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UTCTimeRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUTCTimeRange_Rejects(t *testing.T) {
	for _, input := range []string{"1838 eller 1898", "1897-9", "1897-098", "ca. 1900"} {
		t.Run(input, func(t *testing.T) {
			_, err := UTCTimeRange(input)
			assert.ErrorIs(t, err, ErrUnparseable)
		})
	}
}

func TestNormalizer_Zone(t *testing.T) {
	n := New(nil)
	assert.Equal(t, time.UTC, n.Location())

	got, err := n.UTCTime("Thu Nov 09 15:47:04 CET 2017")
	require.NoError(t, err)
	assert.Equal(t, "2017-11-09T15:47:04Z", got)

	_, err = NewForZone("Nowhere/Special")
	assert.Error(t, err)

	assert.Equal(t, DefaultZone, Default().Location().String())
}

func TestNormalise_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	years := gen.IntRange(1000, 9999)
	seps := gen.OneConstOf("-", ".", "/", " ")

	properties.Property("a bare year pads to midnight on January 1st", prop.ForAll(
		func(y int) bool {
			got, err := UTCTime(fmt.Sprintf("%04d", y))
			return err == nil && got == fmt.Sprintf("%04d-01-01T00:00:00Z", y)
		},
		years,
	))

	properties.Property("a valid month keeps month precision in range mode", prop.ForAll(
		func(y, m int, sep string) bool {
			got, err := UTCTimeRange(fmt.Sprintf("%04d%s%02d", y, sep, m))
			return err == nil && got == fmt.Sprintf("%04d-%02d", y, m)
		},
		years, gen.IntRange(1, 12), seps,
	))

	properties.Property("a two digit suffix from 13 is an abbreviated range", prop.ForAll(
		func(y, suffix int) bool {
			input := fmt.Sprintf("%04d-%02d", y, suffix)
			if _, err := UTCTime(input); err == nil {
				return false
			}
			got, err := UTCTimeRange(input)
			want := fmt.Sprintf("[%04d TO %s%02d]", y, fmt.Sprintf("%04d", y)[:2], suffix)
			return err == nil && got == want
		},
		years, gen.IntRange(13, 99),
	))

	properties.Property("two years form a range that points reject", prop.ForAll(
		func(a, b int, sep string) bool {
			input := fmt.Sprintf("%04d%s%04d", a, sep, b)
			if _, err := UTCTime(input); err == nil {
				return false
			}
			got, err := UTCTimeRange(input)
			return err == nil && got == fmt.Sprintf("[%04d TO %04d]", a, b)
		},
		years, years, seps,
	))

	properties.Property("written form is always second precision Zulu", prop.ForAll(
		func(h, m, s int) bool {
			got, err := UTCTime(fmt.Sprintf("Wed Jan 15 %02d:%02d:%02d CET 2020", h, m, s))
			if err != nil {
				return false
			}
			_, perr := time.Parse(solrTimeLayout, got)
			return perr == nil
		},
		gen.IntRange(0, 23), gen.IntRange(0, 59), gen.IntRange(0, 59),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
