package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"reservation-system/utils"
)

// Duration is a time span stored as microseconds and rendered as HH:MM:SS.
type Duration time.Duration

func ParseDuration(value string) (Duration, error) {
	d, err := utils.ParseSpan(value)
	return Duration(d), err
}

func (d Duration) String() string {
	return utils.FormatSpan(time.Duration(d))
}

func (Duration) GormDataType() string {
	return "bigint"
}

func (d Duration) Value() (driver.Value, error) {
	return int64(time.Duration(d) / time.Microsecond), nil
}

func (d *Duration) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*d = Duration(time.Duration(v) * time.Microsecond)
	case float64:
		*d = Duration(time.Duration(v) * time.Microsecond)
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("cannot scan %T into Duration", value)
	}
	return nil
}

func (d *Duration) scanString(s string) error {
	micros, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		*d = Duration(time.Duration(micros) * time.Microsecond)
		return nil
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var seconds float64
		if err := json.Unmarshal(data, &seconds); err != nil {
			return fmt.Errorf("duration must be a string or a number of seconds")
		}
		*d = Duration(time.Duration(seconds * float64(time.Second)))
		return nil
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar day without a time component.
type Date struct {
	time.Time
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func ParseDate(value string) (Date, error) {
	t, err := utils.ParseDate(value)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (Date) GormDataType() string {
	return "date"
}

func (d Date) Value() (driver.Value, error) {
	return d.Format(dateLayout), nil
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = DateOf(v)
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = Date{}
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	if len(s) >= len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock is a wall-clock time of day, stored as the offset since midnight.
type Clock time.Duration

func ParseClock(value string) (Clock, error) {
	offset, err := utils.ParseTimeOfDay(value)
	return Clock(offset), err
}

// ClockOf takes the time-of-day part of t.
func ClockOf(t time.Time) Clock {
	return Clock(t.Sub(utils.BeginningOfDay(t)))
}

func (c Clock) String() string {
	d := time.Duration(c)
	out := fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	if micros := (d % time.Second) / time.Microsecond; micros > 0 {
		out += fmt.Sprintf(".%06d", micros)
	}
	return out
}

func (Clock) GormDataType() string {
	return "time"
}

func (c Clock) Value() (driver.Value, error) {
	return c.String(), nil
}

func (c *Clock) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*c = ClockOf(v)
	case int64:
		*c = Clock(time.Duration(v) * time.Microsecond)
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	case nil:
		*c = 0
	default:
		return fmt.Errorf("cannot scan %T into Clock", value)
	}
	return nil
}

func (c *Clock) scanString(s string) error {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*c = ClockOf(t)
		return nil
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
