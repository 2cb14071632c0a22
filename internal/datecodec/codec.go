package datecodec

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDate is returned when a value cannot be resolved to a plausible
// calendar day.
var ErrInvalidDate = errors.New("invalid date")

// unixEpochSerial is the spreadsheet serial number of 1970-01-01.
const unixEpochSerial = 25569

// phantomLeapDay is serial 60, the nonexistent 1900-02-29 kept by legacy
// spreadsheet software.
const phantomLeapDay = 60

var persistedPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// CalendarDate is a year/month/day triple with no time of day and no zone.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a CalendarDate, reporting false when the fields do not name a
// real day.
func New(year int, month time.Month, day int) (CalendarDate, bool) {
	d := CalendarDate{Year: year, Month: month, Day: day}
	t := d.Time(time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return CalendarDate{}, false
	}
	return d, true
}

// MustNew is New for literals known to be valid.
func MustNew(year int, month time.Month, day int) CalendarDate {
	d, ok := New(year, month, day)
	if !ok {
		panic(fmt.Sprintf("datecodec: %04d-%02d-%02d is not a calendar day", year, month, day))
	}
	return d
}

// FromTime reads the local calendar fields of t. No zone conversion is
// applied, so the day the caller sees is the day that is stored.
func FromTime(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) CalendarDate {
	return FromTime(time.Now().In(loc))
}

// Time returns midnight of d in loc.
func (d CalendarDate) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsZero reports whether d is the zero value.
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats d as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return ToPersisted(d)
}

// Compare returns -1, 0 or +1.
func (d CalendarDate) Compare(o CalendarDate) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d CalendarDate) Before(o CalendarDate) bool { return d.Compare(o) < 0 }
func (d CalendarDate) After(o CalendarDate) bool  { return d.Compare(o) > 0 }
func (d CalendarDate) Equal(o CalendarDate) bool  { return d == o }

// AddDays moves d by n days.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return FromTime(d.Time(time.UTC).AddDate(0, 0, n))
}

// FirstOfMonth and LastOfMonth bound the month containing d.
func (d CalendarDate) FirstOfMonth() CalendarDate {
	return CalendarDate{Year: d.Year, Month: d.Month, Day: 1}
}

func (d CalendarDate) LastOfMonth() CalendarDate {
	return FromTime(time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC))
}

// MonthBounds returns the first and last day of year/month.
func MonthBounds(year int, month time.Month) (CalendarDate, CalendarDate) {
	first := CalendarDate{Year: year, Month: month, Day: 1}
	return first, first.LastOfMonth()
}

// ToPersisted formats d as a zero padded YYYY-MM-DD string.
func ToPersisted(d CalendarDate) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ToSerial returns the spreadsheet serial number of d.
func ToSerial(d CalendarDate) int {
	days := int(d.Time(time.UTC).Unix() / 86400)
	serial := days + unixEpochSerial
	if serial <= phantomLeapDay {
		serial--
	}
	return serial
}

// IsSameCalendarDay compares the local year/month/day of a and b.
func IsSameCalendarDay(a, b time.Time) bool {
	return FromTime(a) == FromTime(b)
}

// YearRange bounds the years a Codec accepts. Zero bounds are open.
type YearRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Contains reports whether year lies inside the range.
func (r YearRange) Contains(year int) bool {
	if r.Min != 0 && year < r.Min {
		return false
	}
	if r.Max != 0 && year > r.Max {
		return false
	}
	return true
}

// DefaultYearRange is the range used when none is configured.
var DefaultYearRange = YearRange{Min: 2023, Max: 2026}

// Codec decodes persisted strings and spreadsheet serials, rejecting years
// outside its range.
type Codec struct {
	years YearRange
}

// NewCodec returns a Codec restricted to years.
func NewCodec(years YearRange) *Codec {
	return &Codec{years: years}
}

// Default uses DefaultYearRange.
var Default = NewCodec(DefaultYearRange)

// Unbounded accepts any year.
var Unbounded = NewCodec(YearRange{})

// Years returns the accepted range.
func (c *Codec) Years() YearRange {
	return c.years
}

// Check returns ErrInvalidDate when d's year is outside the accepted range.
func (c *Codec) Check(d CalendarDate) error {
	if !c.years.Contains(d.Year) {
		return fmt.Errorf("%w: year %d outside %d..%d", ErrInvalidDate, d.Year, c.years.Min, c.years.Max)
	}
	return nil
}

// FromPersisted parses a YYYY-MM-DD string built by ToPersisted.
func (c *Codec) FromPersisted(s string) (CalendarDate, error) {
	m := persistedPattern.FindStringSubmatch(s)
	if m == nil {
		return CalendarDate{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	d, ok := New(year, time.Month(month), day)
	if !ok {
		return CalendarDate{}, fmt.Errorf("%w: %q is not a calendar day", ErrInvalidDate, s)
	}
	if err := c.Check(d); err != nil {
		return CalendarDate{}, err
	}
	return d, nil
}

// FromSerial converts a spreadsheet serial day number. The fractional part
// (time of day) is dropped. A positive yearOverride replaces the year only.
//
// Serial 25569 is 1970-01-01, so 45931 resolves to 2025-10-01. Serials below
// 60 predate the phantom 1900-02-29 and are shifted back into line.
func (c *Codec) FromSerial(serial float64, yearOverride int) (CalendarDate, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 1 {
		return CalendarDate{}, fmt.Errorf("%w: serial %v", ErrInvalidDate, serial)
	}
	n := int(math.Floor(serial))
	if n == phantomLeapDay {
		return CalendarDate{}, fmt.Errorf("%w: serial 60 is 1900-02-29", ErrInvalidDate)
	}
	days := n - unixEpochSerial
	if n < phantomLeapDay {
		days++
	}

	d := FromTime(time.Unix(int64(days)*86400, 0).UTC())
	if yearOverride > 0 {
		overridden, ok := New(yearOverride, d.Month, d.Day)
		if !ok {
			return CalendarDate{}, fmt.Errorf("%w: %02d-%02d does not exist in %d", ErrInvalidDate, int(d.Month), d.Day, yearOverride)
		}
		d = overridden
	}
	if err := c.Check(d); err != nil {
		return CalendarDate{}, err
	}
	return d, nil
}

// MarshalJSON encodes d as "YYYY-MM-DD".
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(ToPersisted(d))), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" with no year restriction.
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	parsed, err := Unbounded.FromPersisted(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores d as its persisted string.
func (d CalendarDate) Value() (driver.Value, error) {
	return ToPersisted(d), nil
}

// Scan reads DATE columns returned either as time.Time or as text. The
// calendar fields of a time.Time are read as-is, never converted.
func (d *CalendarDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	case nil:
		*d = CalendarDate{}
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidDate, src)
	}
}

func (d *CalendarDate) scanText(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := Unbounded.FromPersisted(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
