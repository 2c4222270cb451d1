// Package daykey scopes "today" for tasks and status rows. Days are cut at
// midnight in a fixed UTC+05:30 frame, independent of the host timezone and
// without daylight saving.
package daykey

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const (
	Offset = 5*time.Hour + 30*time.Minute
	layout = "2006-01-02"
)

var zone = time.FixedZone("UTC+05:30", int(Offset/time.Second))

// Key is a calendar date (YYYY-MM-DD) in the shifted frame.
type Key string

// Today returns the day key containing t.
func Today(t time.Time) Key {
	return Key(t.In(zone).Format(layout))
}

// Window returns the absolute [start, end) range of the day containing t.
// start is midnight of that day in the shifted frame, expressed in UTC.
func Window(t time.Time) (start, end time.Time) {
	y, m, d := t.In(zone).Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, zone).UTC()
	return start, start.Add(24 * time.Hour)
}

// Parse validates s as a day key.
func Parse(s string) (Key, error) {
	if _, err := time.Parse(layout, s); err != nil {
		return "", fmt.Errorf("invalid day key %q: %w", s, err)
	}
	return Key(s), nil
}

func (k Key) String() string {
	return string(k)
}

// Value stores the key as a plain date string, which postgres, mysql and
// sqlite all accept for a date column.
func (k Key) Value() (driver.Value, error) {
	if k == "" {
		return nil, nil
	}
	return string(k), nil
}

// Scan accepts the representations drivers return for a date column.
func (k *Key) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*k = ""
	case time.Time:
		*k = Key(v.Format(layout))
	case string:
		return k.scanString(v)
	case []byte:
		return k.scanString(string(v))
	default:
		return fmt.Errorf("daykey: cannot scan %T", src)
	}
	return nil
}

func (k *Key) scanString(s string) error {
	if len(s) < len(layout) {
		return fmt.Errorf("daykey: cannot scan %q", s)
	}
	parsed, err := Parse(s[:len(layout)])
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// GormDataType keeps the column a date on every dialect.
func (Key) GormDataType() string {
	return "date"
}
