// Package timeutil normalises event timestamps into the canonical UTC form
// persisted with every metric row.
package timeutil

import (
	"strings"
	"time"

	"github.com/quantfold/shadowbench/errs"
)

// msEpochThreshold separates second-precision epochs from millisecond ones.
// Values above it are interpreted as milliseconds.
const msEpochThreshold = int64(1e12)

// FromEpoch converts a unix epoch in seconds or milliseconds (auto-detected)
// into a UTC time.
func FromEpoch(epoch int64) time.Time {
	if epoch > msEpochThreshold {
		return time.UnixMilli(epoch).UTC()
	}
	return time.Unix(epoch, 0).UTC()
}

// ToUTCISO renders t as an RFC 3339 UTC string, the canonical row timestamp.
func ToUTCISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// EpochToUTCISO converts an epoch (seconds or milliseconds) to the canonical
// row timestamp.
func EpochToUTCISO(epoch int64) string {
	return ToUTCISO(FromEpoch(epoch))
}

// ParseISO parses an ISO-8601 timestamp, accepting a trailing Z or an explicit
// offset, and returns it in UTC. Invalid inputs are surfaced as errors rather
// than silently replaced with the current time.
func ParseISO(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errs.New("timeutil", errs.CodeInvalid, errs.WithMessage("empty timestamp"))
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999-07:00", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errs.New("timeutil", errs.CodeInvalid,
		errs.WithMessage("invalid ISO timestamp: "+trimmed))
}
