// Package retirement derives the administrative retirement date of a teacher
// from the raw birth date, grade and establishment fields of a record.
//
// Calculate is pure: it performs no I/O, keeps no state and never panics to
// its caller. Every failure collapses into an Undetermined result whose Reason
// is kept for the caller's logs; the record's derived field is then left
// unset.
package retirement

import (
	"fmt"
	"time"
)

// Reason explains why a Result is undetermined.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMissingInput
	ReasonUnparseableDate
	ReasonInternalError
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "determined"
	case ReasonMissingInput:
		return "missing_input"
	case ReasonUnparseableDate:
		return "unparseable_date"
	case ReasonInternalError:
		return "internal_error"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Birth years outside this range are clamped, not rejected.
const (
	MinBirthYear = 1900
	MaxBirthYear = 2100
)

// DateLayout is the serialized form of a retirement date.
const DateLayout = "2006-01-02"

// Result is either Determined (Date set, Reason == ReasonNone) or
// Undetermined (Reason set, Detail holds the diagnostic).
type Result struct {
	Date        time.Time
	Reason      Reason
	Detail      string
	Clamped     bool
	BirthDate   time.Time
	Anniversary time.Time
	Category    Category
	College     bool
}

// Determined reports whether a retirement date was computed.
func (r Result) Determined() bool {
	return r.Reason == ReasonNone && !r.Date.IsZero()
}

// DateString returns the date as YYYY-MM-DD, or "" when undetermined.
func (r Result) DateString() string {
	if !r.Determined() {
		return ""
	}
	return r.Date.Format(DateLayout)
}

// DatePtr returns a copy of the date, or nil when undetermined.
func (r Result) DatePtr() *time.Time {
	if !r.Determined() {
		return nil
	}
	d := r.Date
	return &d
}

func undetermined(reason Reason, detail string) Result {
	return Result{Reason: reason, Detail: detail}
}

// Calculate computes the retirement date.
//
//   - birthDate: spreadsheet serial, "DD/MM/YYYY", "YYYY-MM-DD" or anything
//     the flexible parser accepts; nil, "" and 0 mean absent.
//   - grade: only its first letter counts (A=60, B=58, otherwise 55).
//   - establishment: names starting with "CEG" follow the school calendar
//     (October 1st); every other establishment rounds to the next quarter.
func Calculate(birthDate any, grade, establishment string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = undetermined(ReasonInternalError, fmt.Sprintf("panic: %v", p))
		}
	}()

	in, ok := Classify(birthDate)
	if !ok {
		return undetermined(ReasonMissingInput, "birth date is empty")
	}

	born, err := in.Date()
	if err != nil {
		return undetermined(ReasonUnparseableDate, err.Error())
	}
	if born.IsZero() {
		return undetermined(ReasonUnparseableDate, fmt.Sprintf("no date in %v", birthDate))
	}

	born, clamped := clampYear(born)

	category := CategoryOf(grade)
	college := IsCollege(establishment)
	anniversary := born.AddDate(category.RetirementAge(), 0, 0)

	var date time.Time
	if college {
		date = collegeRetirement(anniversary)
	} else {
		date = quarterRetirement(anniversary)
	}

	return Result{
		Date:        date,
		Clamped:     clamped,
		BirthDate:   born,
		Anniversary: anniversary,
		Category:    category,
		College:     college,
	}
}

// clampYear forces the year into [MinBirthYear, MaxBirthYear], keeping month
// and day.
func clampYear(d time.Time) (time.Time, bool) {
	switch {
	case d.Year() > MaxBirthYear:
		return time.Date(MaxBirthYear, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
	case d.Year() < MinBirthYear:
		return time.Date(MinBirthYear, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
	default:
		return d, false
	}
}

// collegeRetirement returns the first October 1st on or after anniversary.
func collegeRetirement(anniversary time.Time) time.Time {
	oct1 := time.Date(anniversary.Year(), time.October, 1, 0, 0, 0, 0, time.UTC)
	if anniversary.After(oct1) {
		return oct1.AddDate(1, 0, 0)
	}
	return oct1
}

// quarterRetirement returns the first day of the quarter following the one
// that contains anniversary. The fourth quarter wraps to January 1st of the
// next year.
func quarterRetirement(anniversary time.Time) time.Time {
	month0 := int(anniversary.Month()) - 1
	quarter := month0 / 3
	next := (quarter + 1) * 3
	return time.Date(anniversary.Year(), time.Month(next+1), 1, 0, 0, 0, 0, time.UTC)
}
