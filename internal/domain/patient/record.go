// Package patient implements the patient record store: schema validation,
// derived-field computation, identifier allocation, and CRUD over a
// pluggable persistence gateway.
package patient

import "math"

// Gender is a closed enumeration of accepted gender values.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Verdict classifies a BMI value.
type Verdict string

const (
	VerdictUnderweight Verdict = "Underweight"
	VerdictNormal      Verdict = "Normal"
	VerdictOverweight  Verdict = "Overweight"
	VerdictObese       Verdict = "Obese"
)

// Record is one patient's stored health profile. ID is assigned by the
// store at creation and immutable afterwards. BMI and Verdict are derived
// from Height and Weight and are never independently settable.
type Record struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	City    string  `json:"city"`
	Age     int     `json:"age"`
	Gender  Gender  `json:"gender"`
	Height  float64 `json:"height"`
	Weight  float64 `json:"weight"`
	BMI     float64 `json:"bmi"`
	Verdict Verdict `json:"verdict"`
}

// RecordSet maps record ID to record. It is the unit of atomic load/save.
type RecordSet map[string]Record

// Clone returns an independent copy of the set.
func (s RecordSet) Clone() RecordSet {
	out := make(RecordSet, len(s))
	for id, r := range s {
		out[id] = r
	}
	return out
}

// ComputeBMI returns weight/height² rounded to 2 decimal places.
// A non-positive height yields 0 rather than propagating Inf/NaN; validated
// records never hit that branch.
func ComputeBMI(height, weight float64) float64 {
	if height <= 0 {
		return 0
	}
	return math.Round(weight/(height*height)*100) / 100
}

// VerdictFor classifies a BMI value. The ladder is evaluated in order and
// the first match wins.
func VerdictFor(bmi float64) Verdict {
	switch {
	case bmi < 18.5:
		return VerdictUnderweight
	case bmi < 25:
		return VerdictNormal
	case bmi < 30:
		return VerdictOverweight
	default:
		return VerdictObese
	}
}

// withDerived returns the record with BMI and Verdict recomputed from the
// current height and weight.
func (r Record) withDerived() Record {
	r.BMI = ComputeBMI(r.Height, r.Weight)
	r.Verdict = VerdictFor(r.BMI)
	return r
}
