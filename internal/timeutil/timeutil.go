// Package timeutil guarantees that every timestamp entering or leaving the
// scheduling core carries an explicit time zone.
//
// Go cannot tell, after the fact, whether a time.Time was parsed from a
// zone-less literal: time.Parse silently assumes UTC. The package therefore
// owns that boundary. Code that reads legacy zone-less values (CSV files,
// timestamp-without-time-zone columns) parses them into the NoZone sentinel
// location, and Normalize later reinterprets their wall clock in the
// deployment's configured zone. Timestamps that already carry a zone are
// returned unchanged; normalization only guarantees presence of an offset,
// never conversion to a canonical one.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NoZone is the sentinel location for timestamps recorded without zone
// information. It has an empty zone name and a zero offset, which is the
// one combination a genuine zone never produces (UTC is named "UTC").
var NoZone = time.FixedZone("", 0)

// zoneLessLayout is the layout used for legacy timestamps stored without
// zone information.
const zoneLessLayout = "2006-01-02 15:04:05"

// HasZone reports whether t carries an explicit zone: either a named zone
// or a nonzero fixed offset. The zero time is treated as absent rather than
// naive and reports true.
func HasZone(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	name, offset := t.Zone()
	return name != "" || offset != 0
}

// Normalize ensures t carries an explicit zone. A naive t is reinterpreted
// as the same wall-clock time in loc; a t that already has a zone is
// returned unchanged. Normalize is idempotent.
func Normalize(t time.Time, loc *time.Location) time.Time {
	if HasZone(t) {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// Now returns the current instant expressed in loc.
func Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// ParseNaive parses a zone-less timestamp literal into the NoZone sentinel
// so that a later Normalize can attach the deployment zone. It also accepts
// RFC 3339 input, which keeps its own offset.
func ParseNaive(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(zoneLessLayout, s, NoZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// ParseLocation resolves a configured zone spec. It accepts IANA names
// ("UTC", "Asia/Shanghai") and fixed numeric offsets ("+08:00", "-05:30").
func ParseLocation(spec string) (*time.Location, error) {
	if spec == "" {
		return time.UTC, nil
	}

	if strings.HasPrefix(spec, "+") || strings.HasPrefix(spec, "-") {
		return parseFixedOffset(spec)
	}

	loc, err := time.LoadLocation(spec)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", spec, err)
	}
	return loc, nil
}

// parseFixedOffset parses "+08:00" style offsets into a fixed zone named
// after the spec itself, so HasZone recognizes the result as explicit.
func parseFixedOffset(spec string) (*time.Location, error) {
	sign := 1
	if spec[0] == '-' {
		sign = -1
	}

	// The sign was consumed above; a second sign inside a component
	// ("+-5:00") would survive Atoi, so negatives are rejected here.
	parts := strings.SplitN(spec[1:], ":", 2)
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return nil, fmt.Errorf("invalid zone offset %q", spec)
	}

	minutes := 0
	if len(parts) == 2 {
		minutes, err = strconv.Atoi(parts[1])
		if err != nil || minutes < 0 || minutes > 59 {
			return nil, fmt.Errorf("invalid zone offset %q", spec)
		}
	}

	return time.FixedZone(spec, sign*(hours*3600+minutes*60)), nil
}
