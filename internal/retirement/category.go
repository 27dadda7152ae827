package retirement

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category is the statutory bracket given by the first letter of a grade
// code such as "A1-1".
type Category int

const (
	// CategoryDefault covers C, D and every unrecognised or missing grade.
	CategoryDefault Category = iota
	CategoryA
	CategoryB
)

// Statutory retirement ages per category.
const (
	RetirementAgeA       = 60
	RetirementAgeB       = 58
	RetirementAgeDefault = 55
)

// collegePrefix marks secondary colleges (Collège d'Enseignement Général).
const collegePrefix = "CEG"

// CategoryOf classifies a grade code by its first character, ignoring case.
func CategoryOf(grade string) Category {
	switch gradeLetter(grade) {
	case 'A':
		return CategoryA
	case 'B':
		return CategoryB
	default:
		return CategoryDefault
	}
}

// RetirementAge returns the legal age limit of the category.
func (c Category) RetirementAge() int {
	switch c {
	case CategoryA:
		return RetirementAgeA
	case CategoryB:
		return RetirementAgeB
	case CategoryDefault:
		return RetirementAgeDefault
	default:
		return RetirementAgeDefault
	}
}

func (c Category) String() string {
	switch c {
	case CategoryA:
		return "A"
	case CategoryB:
		return "B"
	default:
		return "default"
	}
}

// Letter returns the uppercased first character of grade, or "C" when the
// grade is empty. Reporting uses it to bucket records (A, B, C, D, ...).
func Letter(grade string) string {
	return string(gradeLetter(grade))
}

func gradeLetter(grade string) rune {
	if grade == "" {
		return 'C'
	}
	r, _ := utf8.DecodeRuneInString(grade)
	return unicode.ToUpper(r)
}

// IsCollege reports whether an establishment name designates a college.
func IsCollege(establishment string) bool {
	return strings.HasPrefix(strings.ToUpper(establishment), collegePrefix)
}
