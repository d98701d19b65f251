// utils/dates.go
package utils

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var canonicalDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var (
	ErrInvalidDateFormat   = errors.New("invalid date format")
	ErrInvalidCalendarDate = errors.New("invalid calendar date")
)

// InvalidDateFormatError keeps the value the caller sent so the rejection
// can be shown back to the user as-is.
type InvalidDateFormatError struct {
	Input string
}

func (e *InvalidDateFormatError) Error() string {
	return fmt.Sprintf("invalid date format %q: expected YYYY-MM-DD", e.Input)
}

func (e *InvalidDateFormatError) Is(target error) bool {
	return target == ErrInvalidDateFormat
}

// NormalizeDate reduces a date-like string to its YYYY-MM-DD prefix.
// A trailing time part separated by "T" or by a space is dropped.
// The value never goes through time.Time, so the host timezone cannot
// move it to the previous or next day.
func NormalizeDate(input string) (string, error) {
	s := strings.TrimSpace(input)
	if i := strings.Index(s, "T"); i >= 0 {
		s = s[:i]
	} else if i := strings.Index(s, " "); i >= 0 {
		s = s[:i]
	}
	if !canonicalDatePattern.MatchString(s) {
		return "", &InvalidDateFormatError{Input: input}
	}
	return s, nil
}

// SplitDate decomposes a canonical date into its integer parts.
func SplitDate(date string) (year, month, day int, err error) {
	canonical, err := NormalizeDate(date)
	if err != nil {
		return 0, 0, 0, err
	}
	parts := strings.Split(canonical, "-")
	if year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, &InvalidDateFormatError{Input: date}
	}
	if month, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, &InvalidDateFormatError{Input: date}
	}
	if day, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, &InvalidDateFormatError{Input: date}
	}
	return year, month, day, nil
}

// ValidateCalendarDate rejects dates like 2024-02-30 or 2023-13-01.
func ValidateCalendarDate(date string) error {
	year, month, day, err := SplitDate(date)
	if err != nil {
		return err
	}
	if month < 1 || month > 12 || day < 1 || day > daysInMonth(year, month) {
		return fmt.Errorf("%w: %q", ErrInvalidCalendarDate, date)
	}
	return nil
}

func daysInMonth(year, month int) int {
	switch month {
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// MonthBounds returns the first and last day of the month date falls in.
func MonthBounds(date Date) (Date, Date, error) {
	year, month, _, err := SplitDate(string(date))
	if err != nil {
		return "", "", err
	}
	if month < 1 || month > 12 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidCalendarDate, date)
	}
	first := Date(fmt.Sprintf("%04d-%02d-01", year, month))
	last := Date(fmt.Sprintf("%04d-%02d-%02d", year, month, daysInMonth(year, month)))
	return first, last, nil
}

// PreviousMonthBounds is MonthBounds for the month before date's.
func PreviousMonthBounds(date Date) (Date, Date, error) {
	year, month, _, err := SplitDate(string(date))
	if err != nil {
		return "", "", err
	}
	if month--; month == 0 {
		month, year = 12, year-1
	}
	return MonthBounds(Date(fmt.Sprintf("%04d-%02d-01", year, month)))
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var monthAbbreviations = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// FormatDateLong renders "15 de enero de 2024".
func FormatDateLong(date string) (string, error) {
	year, month, day, err := SplitDate(date)
	if err != nil {
		return "", err
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCalendarDate, date)
	}
	return fmt.Sprintf("%d de %s de %d", day, monthNames[month-1], year), nil
}

// FormatDateShort renders "15 ene 2024".
func FormatDateShort(date string) (string, error) {
	year, month, day, err := SplitDate(date)
	if err != nil {
		return "", err
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCalendarDate, date)
	}
	return fmt.Sprintf("%d %s %d", day, monthAbbreviations[month-1], year), nil
}

// Date is a calendar date held in canonical YYYY-MM-DD form.
// It is what gets stored in DATE columns and sent over JSON.
type Date string

// ParseDate normalizes input into a Date.
func ParseDate(input string) (Date, error) {
	s, err := NormalizeDate(input)
	if err != nil {
		return "", err
	}
	return Date(s), nil
}

// DateOf takes the calendar day t falls on in loc. This is the only place
// a clock reading turns into a Date.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return Date(fmt.Sprintf("%04d-%02d-%02d", y, int(m), d))
}

func (d Date) String() string {
	return string(d)
}

// Scan accepts what postgres drivers hand back for a DATE column:
// a time.Time at midnight UTC, or text with an optional time suffix.
func (d *Date) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*d = ""
		return nil
	case time.Time:
		// the wall-clock fields are the stored day; no zone conversion
		y, m, day := v.Date()
		raw = fmt.Sprintf("%04d-%02d-%02d", y, int(m), day)
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	s, err := NormalizeDate(raw)
	if err != nil {
		return err
	}
	*d = Date(s)
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	s, err := NormalizeDate(string(d))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s, err := NormalizeDate(raw)
	if err != nil {
		return err
	}
	*d = Date(s)
	return nil
}
