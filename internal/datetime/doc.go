// Package datetime normalises free-text catalog dates into Solr date forms.
//
// Input is matched against a fixed, ordered list of recognisers and the
// first match wins:
//
//  1. Full written form:  "Thu Nov 09 15:47:04 CET 2017"
//  2. Year:               "2019"
//  3. Year and month:     "2019-10", "1947.03"
//  4. Year, month, day:   "2019-10-30", "1978.08.30"
//  5. Year range:         "1972-1979"
//  6. Abbreviated range:  "1897-98"
//
// UTCTime only uses recognisers 1-4 and yields a DatePointField value such
// as "2019-10-30T00:00:00Z". UTCTimeRange uses all six and yields a
// DateRangeField value: the date at its own precision ("2019-10") or a
// bracketed range ("[1897 TO 1898]").
//
// Day-of-month is only checked against 01-31, so "2019-02-31" is accepted.
// The full written form is read in the reference zone (Europe/Copenhagen by
// default); its zone abbreviation is not interpreted.
package datetime
