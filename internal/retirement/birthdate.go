package retirement

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ── Birth date encodings ──
//
// A birth date reaches the calculator from a form (ISO string), from a manual
// import (DD/MM/YYYY) or straight from a spreadsheet cell (serial number).
// Classify resolves the shape once; each shape parses itself.

// serialEpochOffset is the spreadsheet serial of 1970-01-01. It already
// contains the 1900 leap-year bug of spreadsheet tools, so it must not be
// recomputed from another epoch.
const serialEpochOffset = 25569

// maxSerialDays bounds serials to what a calendar date can represent.
const maxSerialDays = 1e8

// Years a text date may carry. Beyond them the date is not representable.
const (
	minTextYear = -271821
	maxTextYear = 275760
)

var (
	errNoDigits      = errors.New("no digit in date text")
	errSlashParts    = errors.New("slash date must have exactly three parts")
	errSerialRange   = errors.New("serial date out of range")
	errNoYearParsed  = errors.New("parsed date carries no year")
	errNotANumber    = errors.New("date component is not a number")
	errYearRange     = errors.New("year out of range")
	unixEpochUTCDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// BirthDateInput is one of SerialDate, SlashDate, IsoDate or UnrecognizedDate.
type BirthDateInput interface {
	// Date resolves the input to a calendar date at UTC midnight.
	Date() (time.Time, error)
	isBirthDateInput()
}

// SerialDate is a spreadsheet day count (25569 = 1970-01-01).
type SerialDate float64

// SlashDate is a day-first DD/MM/YYYY string.
type SlashDate string

// IsoDate is a hyphenated string, normally YYYY-MM-DD.
type IsoDate string

// UnrecognizedDate is any other non-empty string.
type UnrecognizedDate string

func (SerialDate) isBirthDateInput()       {}
func (SlashDate) isBirthDateInput()        {}
func (IsoDate) isBirthDateInput()          {}
func (UnrecognizedDate) isBirthDateInput() {}

// Classify picks the encoding of a raw field value. ok is false when the
// value is absent: nil, blank text, numeric zero or false.
func Classify(raw any) (in BirthDateInput, ok bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case BirthDateInput:
		return v, v != nil
	case string:
		return classifyString(v)
	case *string:
		if v == nil {
			return nil, false
		}
		return classifyString(*v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return classifyString(v.String())
		}
		return classifyNumber(f)
	case float64:
		return classifyNumber(v)
	case float32:
		return classifyNumber(float64(v))
	case int:
		return classifyNumber(float64(v))
	case int8:
		return classifyNumber(float64(v))
	case int16:
		return classifyNumber(float64(v))
	case int32:
		return classifyNumber(float64(v))
	case int64:
		return classifyNumber(float64(v))
	case uint:
		return classifyNumber(float64(v))
	case uint8:
		return classifyNumber(float64(v))
	case uint16:
		return classifyNumber(float64(v))
	case uint32:
		return classifyNumber(float64(v))
	case uint64:
		return classifyNumber(float64(v))
	case bool:
		return nil, false
	case time.Time:
		if v.IsZero() {
			return nil, false
		}
		return IsoDate(v.Format("2006-01-02")), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil, false
		}
		return IsoDate(v.Format("2006-01-02")), true
	default:
		return classifyString(fmt.Sprint(v))
	}
}

func classifyNumber(f float64) (BirthDateInput, bool) {
	if f == 0 {
		return nil, false
	}
	return SerialDate(f), true
}

func classifyString(s string) (BirthDateInput, bool) {
	if s == "" {
		return nil, false
	}
	switch {
	case strings.Contains(s, "-"):
		return IsoDate(s), true
	case strings.Contains(s, "/"):
		return SlashDate(s), true
	default:
		return UnrecognizedDate(s), true
	}
}

// Date implements BirthDateInput.
func (s SerialDate) Date() (time.Time, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, errSerialRange
	}
	days := math.Floor(f - serialEpochOffset)
	if math.Abs(days) > maxSerialDays {
		return time.Time{}, errSerialRange
	}
	return unixEpochUTCDate.AddDate(0, 0, int(days)), nil
}

// Date implements BirthDateInput. Parts are day, month and year in that
// order; out-of-range days and months roll over like any calendar date.
func (s SlashDate) Date() (time.Time, error) {
	parts := strings.Split(string(s), "/")
	if len(parts) != 3 {
		return time.Time{}, errSlashParts
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := datePart(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("%q: %w", string(s), err)
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if year >= 0 && year <= 99 {
		year += 1900
	}
	if year < minTextYear || year > maxTextYear {
		return time.Time{}, fmt.Errorf("%q: %w", string(s), errYearRange)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// datePart reads one numeric component. Blank counts as zero and fractions
// are truncated.
func datePart(p string) (int, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(p, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxSerialDays {
		return 0, errNotANumber
	}
	return int(math.Trunc(f)), nil
}

// Date implements BirthDateInput. All-numeric forms the parser refuses,
// such as 1990-02-30 or 11-08-1990, are read part by part and roll over.
func (s IsoDate) Date() (time.Time, error) {
	t, err := flexibleDate(string(s))
	if err == nil {
		return t, nil
	}
	if nt, ok := numericHyphenDate(string(s)); ok {
		return nt, nil
	}
	return time.Time{}, err
}

// numericHyphenDate reads YYYY-M-D when the first part has four digits and
// M-D-Y otherwise. Two-digit years below 50 are 20xx, the rest 19xx.
func numericHyphenDate(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		if p == "" || len(p) > 6 || strings.Trim(p, "0123456789") != "" {
			return time.Time{}, false
		}
		nums[i], _ = strconv.Atoi(p)
	}

	var year, month, day int
	if len(parts[0]) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		month, day, year = nums[0], nums[1], nums[2]
		switch {
		case len(parts[2]) <= 2 && year < 50:
			year += 2000
		case len(parts[2]) <= 2:
			year += 1900
		}
	}
	if year > maxTextYear {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// Date implements BirthDateInput.
func (s UnrecognizedDate) Date() (time.Time, error) {
	return flexibleDate(string(s))
}

func flexibleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, errNoDigits
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if t.Year() == 0 {
		return time.Time{}, errNoYearParsed
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
