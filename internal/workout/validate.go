package workout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validate checks that every field the type needs is finite and positive.
func Validate(sub Submission) error {
	if !sub.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, sub.Type)
	}
	type field struct {
		name  string
		value float64
	}
	fields := []field{{"distance", sub.Distance}, {"duration", sub.Duration}}
	if sub.Type == TypeRunning {
		fields = append(fields, field{"cadence", sub.Cadence})
	} else {
		fields = append(fields, field{"elevation", sub.Elevation})
	}
	for _, f := range fields {
		if !positiveFinite(f.value) {
			return fmt.Errorf("%w: %s must be a positive number", ErrInvalidInput, f.name)
		}
	}
	return nil
}

func positiveFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// ParseNumber converts a raw form value. Anything unparseable becomes NaN so
// validation rejects it.
func ParseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseSubmission builds a Submission from raw form fields.
func ParseSubmission(typ, distance, duration, cadence, elevation string) Submission {
	return Submission{
		Type:      Type(strings.ToLower(strings.TrimSpace(typ))),
		Distance:  ParseNumber(distance),
		Duration:  ParseNumber(duration),
		Cadence:   ParseNumber(cadence),
		Elevation: ParseNumber(elevation),
	}
}
