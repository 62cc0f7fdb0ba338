// Package twdate converts between the textual date formats used by the Twitter
// API and time.Time.
package twdate

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Format identifies one of the known upstream date formats.
type Format int

const (
	CreatedAt       Format = iota // status/user created_at: "Wed Aug 27 13:08:45 +0000 2008"
	SearchCreatedAt               // legacy search API: "Wed, 27 Aug 2008 13:08:45 +0000"
	TrendsAsOf                    // trends as_of/created_at: "2012-08-24T23:25:43Z"
	ISOMillis                     // "2012-08-24T23:25:43.123Z"
	TrendsDateTime                // "2012-08-24 23:25:43"
	TrendsHour                    // daily trends keys: "2012-08-24 23:25"
	DateOnly                      // "2012-08-24"
)

// formats is the parse order used by ToInstant.
var formats = []Format{CreatedAt, SearchCreatedAt, TrendsAsOf, ISOMillis, TrendsDateTime, TrendsHour, DateOnly}

var formatNames = map[Format]string{
	CreatedAt:       "created_at",
	SearchCreatedAt: "search_created_at",
	TrendsAsOf:      "trends_as_of",
	ISOMillis:       "iso_millis",
	TrendsDateTime:  "trends_datetime",
	TrendsHour:      "trends_hour",
	DateOnly:        "date_only",
}

// String returns the format's name.
func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat looks up a format by its name.
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown date format %q", name)
}

// Formats returns the known formats in parse order.
func Formats() []Format {
	return append([]Format(nil), formats...)
}

// Codec holds the format table. The table is populated on first use and is
// read-only afterwards.
type Codec struct {
	mu      sync.RWMutex
	layouts map[Format]string
	loader  func() map[Format]string
}

// NewCodec creates a codec with an unpopulated table.
func NewCodec() *Codec {
	return &Codec{loader: builtinLayouts}
}

// Default is the process-wide codec.
var Default = NewCodec()

func builtinLayouts() map[Format]string {
	return map[Format]string{
		CreatedAt:       "Mon Jan 02 15:04:05 -0700 2006",
		SearchCreatedAt: "Mon, 02 Jan 2006 15:04:05 -0700",
		TrendsAsOf:      "2006-01-02T15:04:05Z",
		ISOMillis:       "2006-01-02T15:04:05.000Z",
		TrendsDateTime:  "2006-01-02 15:04:05",
		TrendsHour:      "2006-01-02 15:04",
		DateOnly:        "2006-01-02",
	}
}

// table returns the populated layout table, building it on first call.
func (c *Codec) table() map[Format]string {
	c.mu.RLock()
	t := c.layouts
	c.mu.RUnlock()
	if t != nil {
		return t
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.layouts == nil {
		c.layouts = c.loader()
	}
	return c.layouts
}

// Layout returns the time layout for f.
func (c *Codec) Layout(f Format) (string, bool) {
	l, ok := c.table()[f]
	return l, ok
}

// ToText formats t in UTC using f. Unknown formats yield "".
func (c *Codec) ToText(t time.Time, f Format) string {
	l, ok := c.Layout(f)
	if !ok {
		return ""
	}
	return t.UTC().Format(l)
}

// ToInstant parses s with each known format in order. It reports false when
// no format matches.
func (c *Codec) ToInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	tbl := c.table()
	for _, f := range formats {
		if t, err := time.Parse(tbl[f], s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ToText formats t with the default codec.
func ToText(t time.Time, f Format) string { return Default.ToText(t, f) }

// ToInstant parses s with the default codec.
func ToInstant(s string) (time.Time, bool) { return Default.ToInstant(s) }
