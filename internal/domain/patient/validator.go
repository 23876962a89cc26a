package patient

import (
	"fmt"
	"strings"
)

// Profile holds the per-deployment validation bounds. The bounds are fixed
// for the lifetime of a Validator instance. The height lower bound is open,
// the upper bound closed; all other numeric bounds are inclusive.
type Profile struct {
	NameMinLen int
	NameMaxLen int
	CityMinLen int
	CityMaxLen int
	AgeMin     int
	AgeMax     int
	HeightMin  float64
	HeightMax  float64
	WeightMin  float64
	WeightMax  float64
	Genders    []Gender
}

// DefaultProfile returns the standard deployment bounds.
func DefaultProfile() Profile {
	return Profile{
		NameMinLen: 2,
		NameMaxLen: 100,
		CityMinLen: 2,
		CityMaxLen: 100,
		AgeMin:     1,
		AgeMax:     120,
		HeightMin:  0.4,
		HeightMax:  2.5,
		WeightMin:  10.0,
		WeightMax:  300.0,
		Genders:    []Gender{GenderMale, GenderFemale, GenderOther},
	}
}

// CreateInput carries the client-supplied fields for a new record. The ID
// is never client-supplied.
type CreateInput struct {
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Age    int     `json:"age"`
	Gender Gender  `json:"gender"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// UpdatePatch carries a subset of mutable fields for a partial update.
// Nil means "leave unchanged".
type UpdatePatch struct {
	Name   *string  `json:"name"`
	City   *string  `json:"city"`
	Age    *int     `json:"age"`
	Gender *Gender  `json:"gender"`
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`
}

// Validator enforces the record schema for one validation profile.
type Validator struct {
	profile Profile
}

// NewValidator creates a validator for the given profile.
func NewValidator(p Profile) *Validator {
	return &Validator{profile: p}
}

// ValidateCreate checks the input against the full set of bounds and, on
// success, returns a fully populated record (minus ID) with BMI and
// Verdict computed.
func (v *Validator) ValidateCreate(in CreateInput) (Record, error) {
	candidate := Record{
		Name:   in.Name,
		City:   in.City,
		Age:    in.Age,
		Gender: in.Gender,
		Height: in.Height,
		Weight: in.Weight,
	}
	if err := v.validate(candidate); err != nil {
		return Record{}, err
	}
	return candidate.withDerived(), nil
}

// ValidateUpdate overlays the patch onto the existing record and
// re-validates the candidate as a whole, so no partial update can leave the
// record violating a full-record bound. BMI and Verdict are recomputed from
// the candidate's height and weight. The ID is never touched.
func (v *Validator) ValidateUpdate(existing Record, patch UpdatePatch) (Record, error) {
	candidate := existing
	if patch.Name != nil {
		candidate.Name = *patch.Name
	}
	if patch.City != nil {
		candidate.City = *patch.City
	}
	if patch.Age != nil {
		candidate.Age = *patch.Age
	}
	if patch.Gender != nil {
		candidate.Gender = *patch.Gender
	}
	if patch.Height != nil {
		candidate.Height = *patch.Height
	}
	if patch.Weight != nil {
		candidate.Weight = *patch.Weight
	}
	if err := v.validate(candidate); err != nil {
		return Record{}, err
	}
	return candidate.withDerived(), nil
}

// validate is the single routine checking every field constraint. A missing
// required field fails its bound check like any other violation.
func (v *Validator) validate(r Record) error {
	p := v.profile
	if n := len(strings.TrimSpace(r.Name)); n < p.NameMinLen || n > p.NameMaxLen {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("must be %d-%d characters", p.NameMinLen, p.NameMaxLen)}
	}
	if n := len(strings.TrimSpace(r.City)); n < p.CityMinLen || n > p.CityMaxLen {
		return &ValidationError{Field: "city", Reason: fmt.Sprintf("must be %d-%d characters", p.CityMinLen, p.CityMaxLen)}
	}
	if r.Age < p.AgeMin || r.Age > p.AgeMax {
		return &ValidationError{Field: "age", Reason: fmt.Sprintf("must be between %d and %d", p.AgeMin, p.AgeMax)}
	}
	if !v.genderAllowed(r.Gender) {
		return &ValidationError{Field: "gender", Reason: "must be one of " + v.genderList()}
	}
	if r.Height <= p.HeightMin || r.Height > p.HeightMax {
		return &ValidationError{Field: "height", Reason: fmt.Sprintf("must be greater than %.2f and at most %.2f meters", p.HeightMin, p.HeightMax)}
	}
	if r.Weight < p.WeightMin || r.Weight > p.WeightMax {
		return &ValidationError{Field: "weight", Reason: fmt.Sprintf("must be between %.1f and %.1f kilograms", p.WeightMin, p.WeightMax)}
	}
	return nil
}

func (v *Validator) genderAllowed(g Gender) bool {
	for _, allowed := range v.profile.Genders {
		if g == allowed {
			return true
		}
	}
	return false
}

func (v *Validator) genderList() string {
	parts := make([]string, len(v.profile.Genders))
	for i, g := range v.profile.Genders {
		parts[i] = string(g)
	}
	return strings.Join(parts, ", ")
}
