package domain

import (
	"fmt"
	"unicode/utf8"
)

func checkLen(ve *ValidationError, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case min > 0 && n == 0:
		ve.Add(field, field+" is required")
	case n < min:
		ve.Add(field, fmt.Sprintf("%s must be at least %d characters", field, min))
	case max > 0 && n > max:
		ve.Add(field, fmt.Sprintf("%s cannot exceed %d characters", field, max))
	}
}

func checkRange(ve *ValidationError, field string, v, min, max float64) {
	if v < min || v > max {
		ve.Add(field, fmt.Sprintf("%s must be between %g and %g", field, min, max))
	}
}

func checkMin(ve *ValidationError, field string, v, min float64) {
	if v < min {
		ve.Add(field, fmt.Sprintf("%s cannot be less than %g", field, min))
	}
}

func checkEnum[T ~string](ve *ValidationError, field string, v T, allowed ...T) {
	for _, a := range allowed {
		if v == a {
			return
		}
	}
	ve.Add(field, fmt.Sprintf("%s must be one of %v", field, allowed))
}
