package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"invoiceguard/internal/validator"
)

func TestScore(t *testing.T) {
	e := validator.ValidationError{Code: "X"}
	low := validator.ValidationWarning{Code: "W", Impact: validator.ImpactLow}
	medium := validator.ValidationWarning{Code: "W", Impact: validator.ImpactMedium}
	high := validator.ValidationWarning{Code: "W", Impact: validator.ImpactHigh}

	tests := []struct {
		name  string
		errs  []validator.ValidationError
		warns []validator.ValidationWarning
		want  int
	}{
		{"clean", nil, nil, 100},
		{"one error", []validator.ValidationError{e}, nil, 45},
		{"three errors", []validator.ValidationError{e, e, e}, nil, 25},
		{"many errors clamp", []validator.ValidationError{e, e, e, e, e, e, e, e, e, e}, nil, 0},
		{"warnings by impact", nil, []validator.ValidationWarning{low, medium, high}, 75},
		{"error and warning", []validator.ValidationError{e}, []validator.ValidationWarning{medium}, 38},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validator.Score(tt.errs, tt.warns))
		})
	}
}

func TestScore_ErrorsAlwaysBelowHalf(t *testing.T) {
	e := validator.ValidationError{Code: "X"}
	for n := 1; n <= 3; n++ {
		errs := make([]validator.ValidationError, n)
		for i := range errs {
			errs[i] = e
		}
		assert.Less(t, validator.Score(errs, nil), 50)
	}
}
