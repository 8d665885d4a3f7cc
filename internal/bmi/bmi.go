/*
Package bmi implements the body-mass-index classifier and the nutritional
deficiency selection used to tailor a diet plan.
*/
package bmi

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Category is one of the four ordered BMI bands.
type Category int

const (
	Underweight Category = iota
	NormalWeight
	Overweight
	Obese
)

// Band thresholds. Each band is half-open: [lower, upper).
const (
	normalLowerBound     = 18.5
	overweightLowerBound = 25.0
	obeseLowerBound      = 30.0
)

// ValidationMessage is shown to the user when height or weight is unusable.
const ValidationMessage = "Please enter valid positive numbers for height and weight."

// ErrInvalidMeasurement is matched by every *ValidationError.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// ValidationError reports which input could not be used.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return ValidationMessage
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidMeasurement
}

// Measurement holds a validated height and weight.
type Measurement struct {
	HeightCm float64
	WeightKg float64
}

// Result is the computed BMI, rounded to two decimals, and its band.
type Result struct {
	BMI      float64
	Category Category
}

// ParseMeasurement validates the raw form values for height (cm) and weight (kg).
// Both must be finite and strictly positive.
func ParseMeasurement(height, weight string) (Measurement, error) {
	h, err := parsePositive("height", height)
	if err != nil {
		return Measurement{}, err
	}
	w, err := parsePositive("weight", weight)
	if err != nil {
		return Measurement{}, err
	}
	return Measurement{HeightCm: h, WeightKg: w}, nil
}

func parsePositive(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, &ValidationError{Field: field, Value: raw}
	}
	return v, nil
}

// Compute returns weight / (height in metres)^2. The category is taken from
// the unrounded value; only the reported BMI is rounded.
func Compute(m Measurement) Result {
	meters := m.HeightCm / 100
	raw := m.WeightKg / (meters * meters)
	return Result{
		BMI:      math.Round(raw*100) / 100,
		Category: Classify(raw),
	}
}

// Classify maps a BMI value to its band.
func Classify(bmi float64) Category {
	switch {
	case bmi < normalLowerBound:
		return Underweight
	case bmi < overweightLowerBound:
		return NormalWeight
	case bmi < obeseLowerBound:
		return Overweight
	default:
		return Obese
	}
}

// Categories lists every band in ascending order.
func Categories() []Category {
	return []Category{Underweight, NormalWeight, Overweight, Obese}
}

func (c Category) String() string {
	switch c {
	case Underweight:
		return "Underweight"
	case NormalWeight:
		return "Normal weight"
	case Overweight:
		return "Overweight"
	case Obese:
		return "Obese"
	}
	return "Category(" + strconv.Itoa(int(c)) + ")"
}

// Range is the human-readable BMI interval shown on the scale panel.
func (c Category) Range() string {
	switch c {
	case Underweight:
		return "BMI < 18.5"
	case NormalWeight:
		return "BMI 18.5 - 24.9"
	case Overweight:
		return "BMI 25.0 - 29.9"
	case Obese:
		return "BMI ≥ 30.0"
	}
	return ""
}

// Tone is the colour key the page uses for the band.
func (c Category) Tone() string {
	switch c {
	case Underweight:
		return "yellow"
	case NormalWeight:
		return "green"
	case Overweight:
		return "orange"
	case Obese:
		return "red"
	}
	return "gray"
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
