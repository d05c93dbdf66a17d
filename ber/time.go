// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"fmt"
	"time"

	"codello.dev/kasn1"
)

// Time interprets e as a UTCTime or GeneralizedTime depending on its tag. Use
// [Element.TimeAs] for implicitly tagged times.
func (e *Element) Time() (time.Time, error) {
	if e.tag != kasn1.Universal(kasn1.TagUTCTime) && e.tag != kasn1.Universal(kasn1.TagGeneralizedTime) {
		return time.Time{}, typeError(e.tag, "not a time type")
	}
	return e.TimeAs(e.tag.Number)
}

// TimeAs interprets the contents of e as a time of type kind, which must be
// [kasn1.TagUTCTime] or [kasn1.TagGeneralizedTime]. The returned time is in
// UTC.
//
// A UTCTime uses a two-digit year, where 00 through 49 denote the years 2000
// through 2049 and 50 through 99 denote the years 1950 through 1999. Seconds
// are optional and the time zone is mandatory.
//
// A GeneralizedTime uses a four-digit year and requires seconds. Fractional
// seconds are truncated to milliseconds. If the time zone is missing the time
// is interpreted in the local time zone.
//
// For both types a leap second (60) is interpreted as 59 and time zone offsets
// must not exceed 23:59.
func (e *Element) TimeAs(kind uint) (time.Time, error) {
	var parse func(string) (time.Time, bool)
	switch kind {
	case kasn1.TagUTCTime:
		parse = parseUTCTime
	case kasn1.TagGeneralizedTime:
		parse = parseGeneralizedTime
	default:
		return time.Time{}, &Error{KindType, e.tag, fmt.Errorf("unsupported time type %d", kind)}
	}
	s, err := e.TextAs(kind)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := parse(s)
	if !ok {
		return time.Time{}, &Error{KindValue, e.tag, fmt.Errorf("invalid %s %q", stringTypeNames[kind], s)}
	}
	return t.UTC(), nil
}

// parseUTCTime parses the format YYMMDDhhmm[ss](Z|+hhmm|-hhmm).
func parseUTCTime(s string) (time.Time, bool) {
	if len(s) < 11 {
		return time.Time{}, false
	}
	year := atoiN(s, 2)
	if year < 0 {
		return time.Time{}, false
	} else if year <= 49 {
		year += 2000
	} else {
		year += 1900
	}
	s = s[2:]
	month, day, hour, minute := atoiN(s, 2), atoiN(s[2:], 2), atoiN(s[4:], 2), atoiN(s[6:], 2)
	s = s[8:]
	second := atoiN(s, 2)
	if second >= 0 {
		s = s[2:]
	} else {
		second = 0
	}
	loc := parseLocation(s, false)
	if loc == nil {
		return time.Time{}, false
	}
	return validDate(year, month, day, hour, minute, second, 0, loc)
}

// parseGeneralizedTime parses the format YYYYMMDDhhmmss[(.|,)f+][Z|+hh[mm]|-hh[mm]].
func parseGeneralizedTime(s string) (time.Time, bool) {
	if len(s) < 14 {
		return time.Time{}, false
	}
	year, month, day := atoiN(s, 4), atoiN(s[4:], 2), atoiN(s[6:], 2)
	hour, minute, second := atoiN(s[8:], 2), atoiN(s[10:], 2), atoiN(s[12:], 2)
	s = s[14:]
	nsec := 0
	if len(s) > 0 && (s[0] == '.' || s[0] == ',') {
		i := 1
		unit := int(time.Second)
		for ; i < len(s) && '0' <= s[i] && s[i] <= '9'; i++ {
			if unit > int(time.Millisecond) {
				unit /= 10
				nsec += int(s[i]-'0') * unit
			}
		}
		if i == 1 {
			return time.Time{}, false
		}
		s = s[i:]
	}
	loc := time.Local
	if len(s) > 0 {
		if loc = parseLocation(s, true); loc == nil {
			return time.Time{}, false
		}
	}
	return validDate(year, month, day, hour, minute, second, nsec, loc)
}

// validDate returns the specified time if all fields are within their ranges.
// A second value of 60 is clamped to 59.
func validDate(year, month, day, hour, minute, second, nsec int, loc *time.Location) (time.Time, bool) {
	if year < 0 || month < 1 || month > 12 || day < 1 || hour < 0 || hour > 23 ||
		minute < 0 || minute > 59 || second < 0 || second > 60 {
		return time.Time{}, false
	}
	if second == 60 {
		second = 59
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, nsec, loc)
	if t.Day() != day {
		// day out of range for month
		return time.Time{}, false
	}
	return t, true
}

// parseLocation parses a time zone designator: Z or an offset of the form
// +hhmm or -hhmm. If short is true the form +hh and -hh is accepted as well.
func parseLocation(s string, short bool) *time.Location {
	if len(s) == 1 && s[0] == 'Z' {
		return time.UTC
	}
	if len(s) != 5 && (!short || len(s) != 3) {
		return nil
	}
	if s[0] != '+' && s[0] != '-' {
		return nil
	}
	mul := 44 - int(s[0]) // '+' is 43, '-' is 45
	locHour := atoiN(s[1:], 2)
	locMinute := 0
	if len(s) == 5 {
		locMinute = atoiN(s[3:], 2)
	}
	if locHour < 0 || locHour > 23 || locMinute < 0 || locMinute > 59 {
		return nil
	}
	return time.FixedZone("", mul*(locHour*3600+locMinute*60))
}

// atoiN parses exactly n decimal digits at the beginning of s. It returns -1
// if s is too short or contains a non-digit.
func atoiN(s string, n int) (i int) {
	if len(s) < n {
		return -1
	}
	for j := 0; j < n; j++ {
		if s[j] < '0' || '9' < s[j] {
			return -1
		}
		i = i*10 + int(s[j]-'0')
	}
	return i
}
