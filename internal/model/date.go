package model

import "time"

const DateFormat = "2006-01-02"

// Date is a civil calendar day with no time of day or location. It is stored
// as midnight UTC so that day arithmetic never crosses a DST boundary.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day in loc (time.Local when nil).
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

func ParseDate(v string) (Date, error) {
	t, err := time.Parse(DateFormat, v)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

func (d Date) AddDays(n int) Date {
	return Date{d.t.AddDate(0, 0, n)}
}

// AddMonths shifts the first day of d's month by n months. The result is
// always the first of a month, which keeps month arithmetic free of
// day-overflow surprises (Jan 31 + 1 month).
func (d Date) AddMonths(n int) Date {
	return Date{d.FirstOfMonth().t.AddDate(0, n, 0)}
}

func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

func (d Date) DaysInMonth() int {
	return d.FirstOfMonth().t.AddDate(0, 1, -1).Day()
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the signed number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int((other.t.Unix() - d.t.Unix()) / secondsPerDay)
}

// MonthsUntil returns the signed number of calendar months between the
// months of d and other, ignoring the day of month.
func (d Date) MonthsUntil(other Date) int {
	return (other.Year()-d.Year())*12 + int(other.Month()) - int(d.Month())
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func (d Date) Format(layout string) string {
	return d.t.Format(layout)
}

func (d Date) String() string {
	return d.t.Format(DateFormat)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
