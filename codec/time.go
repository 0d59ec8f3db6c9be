package codec

import (
	"time"
)

// Time converts between RFC3339 strings and time.Time. Encoding normalizes
// to UTC and trims trailing zero fractions.
var Time Coercer = &timeCoercer{name: "time", parse: parseRFC3339, format: formatRFC3339Canonical}

// Date converts between "2006-01-02" strings and time.Time.
var Date Coercer = Layout("date", time.DateOnly)

// Layout returns a time coercer for an arbitrary time.Parse layout.
func Layout(name, layout string) Coercer {
	return &timeCoercer{
		name:   name,
		parse:  func(s string) (time.Time, error) { return time.Parse(layout, s) },
		format: func(t time.Time) string { return t.Format(layout) },
	}
}

type timeCoercer struct {
	name   string
	parse  func(string) (time.Time, error)
	format func(time.Time) string
}

func (c *timeCoercer) Name() string { return c.name }

func (c *timeCoercer) Decode(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return *t, nil
	case string:
		if blank(t) {
			return nil, nil
		}
		tm, err := c.parse(t)
		if err != nil {
			return nil, fail(c.name, v, err)
		}
		return tm, nil
	}
	return nil, fail(c.name, v, nil)
}

func (c *timeCoercer) Encode(v any) (any, error) {
	tm, err := c.Decode(v)
	if err != nil || tm == nil {
		return nil, err
	}
	return c.format(tm.(time.Time)), nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
