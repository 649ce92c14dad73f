package normalize

import (
	"regexp"
	"strconv"
	"time"
)

// hl7TimestampRe matches YYYYMMDD[HHMMSS[.FFFF]][+/-ZZZZ] with every piece
// after the date optional, per the HL7 DTM grammar used on MSH-7/PID-7/PV1-44.
var hl7TimestampRe = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})(?:(\d{2})(\d{2})(\d{2})?(?:\.\d+)?)?([+-]\d{4})?$`)

// ParseHL7Date extracts YYYY-MM-DD from an HL7 DTM string, accepting both
// the date-only and full-timestamp forms. Returns ("", false) if the string
// does not match the expected shape or names an impossible calendar date.
func ParseHL7Date(s string) (string, bool) {
	m := hl7TimestampRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year, month, day := m[1], m[2], m[3]
	if !validCalendarDate(year, month, day) {
		return "", false
	}
	return year + "-" + month + "-" + day, true
}

// ParseHL7DateTime extracts an ISO-8601 instant from an HL7 DTM string.
// Minute and second default to "00" when the source omits them, matching
// the source's lenient timestamp handling. Returns ("", false) on mismatch.
func ParseHL7DateTime(s string) (string, bool) {
	m := hl7TimestampRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year, month, day := m[1], m[2], m[3]
	if !validCalendarDate(year, month, day) {
		return "", false
	}
	hour, minute, second := m[4], m[5], m[6]
	if hour == "" {
		hour = "00"
	}
	if minute == "" {
		minute = "00"
	}
	if second == "" {
		second = "00"
	}
	out := year + "-" + month + "-" + day + "T" + hour + ":" + minute + ":" + second
	if offset := m[7]; offset != "" {
		out += offset[:3] + ":" + offset[3:]
	} else {
		out += "Z"
	}
	return out, true
}

func validCalendarDate(year, month, day string) bool {
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC).Day() == d
}
