package workout

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// zonedLayouts name an instant; floatingLayouts carry a wall-clock reading
// with no zone. Both are tried in order.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05Z07:00",
	}
	floatingLayouts = []string{
		floatingLayout,
		"2006-01-02 15:04:05",
		dayLayout,
	}
)

const floatingLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a session's createdAt instant as it arrived from storage.
// Records written by older clients may hold text that does not parse; such a
// Timestamp keeps the original text in Raw and reports !Valid().
//
// A Floating timestamp was written without a zone. Time then holds the wall
// clock reading in UTC, and In pins it to the zone of the reader's calendar.
type Timestamp struct {
	Time     time.Time
	Raw      string
	Floating bool
}

// At wraps a native time value.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses a serialized instant. It never fails: unparseable input
// yields an invalid Timestamp that remembers the input.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}
		}
	}
	for _, layout := range floatingLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Floating: true}
		}
	}
	return Timestamp{Raw: s}
}

// In returns the instant viewed in loc. Floating timestamps keep their wall
// clock reading, so "2024-01-20" is January 20 in every zone.
func (ts Timestamp) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if !ts.Floating {
		return ts.Time.In(loc)
	}
	t := ts.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// Valid reports whether the timestamp holds a usable instant.
func (ts Timestamp) Valid() bool {
	return !ts.Time.IsZero()
}

// String returns the RFC 3339 form, the zone-less form for floating
// timestamps, or the raw text for invalid ones.
func (ts Timestamp) String() string {
	if ts.Valid() && ts.Floating {
		return ts.Time.Format(floatingLayout)
	}
	if ts.Valid() {
		return ts.Time.Format(time.RFC3339Nano)
	}
	return ts.Raw
}

// MarshalJSON writes valid instants as RFC 3339 strings and invalid ones as
// their original text, so a round trip through storage never invents a date.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Valid() && ts.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(ts.String())
}

// UnmarshalJSON accepts a string instant or a number of Unix milliseconds.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*ts = ParseTimestamp(s)
		return nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		*ts = Timestamp{Raw: string(b)}
		return nil
	}
	*ts = Timestamp{Time: time.UnixMilli(ms).UTC()}
	return nil
}
