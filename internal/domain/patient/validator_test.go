package patient

import (
	"errors"
	"testing"
)

func validInput() CreateInput {
	return CreateInput{
		Name:   "Ananya Verma",
		City:   "Guwahati",
		Age:    28,
		Gender: GenderFemale,
		Height: 1.72,
		Weight: 68.5,
	}
}

func TestValidateCreate(t *testing.T) {
	v := NewValidator(DefaultProfile())

	rec, err := v.ValidateCreate(validInput())
	if err != nil {
		t.Fatalf("ValidateCreate failed: %v", err)
	}
	if rec.ID != "" {
		t.Errorf("expected empty ID before allocation, got %q", rec.ID)
	}
	if rec.BMI != 23.15 {
		t.Errorf("BMI = %v, want 23.15", rec.BMI)
	}
	if rec.Verdict != VerdictNormal {
		t.Errorf("Verdict = %q, want Normal", rec.Verdict)
	}
}

func TestValidateCreateRejectsBounds(t *testing.T) {
	v := NewValidator(DefaultProfile())

	cases := []struct {
		name    string
		mutate  func(*CreateInput)
		field   string
	}{
		{"missing name", func(in *CreateInput) { in.Name = "" }, "name"},
		{"name too short", func(in *CreateInput) { in.Name = "A" }, "name"},
		{"missing city", func(in *CreateInput) { in.City = "" }, "city"},
		{"age zero", func(in *CreateInput) { in.Age = 0 }, "age"},
		{"age too high", func(in *CreateInput) { in.Age = 121 }, "age"},
		{"unknown gender", func(in *CreateInput) { in.Gender = "unknown" }, "gender"},
		{"missing gender", func(in *CreateInput) { in.Gender = "" }, "gender"},
		{"height at open lower bound", func(in *CreateInput) { in.Height = 0.4 }, "height"},
		{"height too tall", func(in *CreateInput) { in.Height = 3.0 }, "height"},
		{"weight too low", func(in *CreateInput) { in.Weight = 5 }, "weight"},
		{"weight too high", func(in *CreateInput) { in.Weight = 300.5 }, "weight"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := v.ValidateCreate(in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestValidateCreateAcceptsClosedUpperHeight(t *testing.T) {
	v := NewValidator(DefaultProfile())
	in := validInput()
	in.Height = 2.5

	if _, err := v.ValidateCreate(in); err != nil {
		t.Fatalf("height 2.5 should be accepted (closed upper bound): %v", err)
	}
}

func TestValidateUpdatePartialOverlay(t *testing.T) {
	v := NewValidator(DefaultProfile())
	existing, err := v.ValidateCreate(validInput())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	existing.ID = "ABCD1234"

	weight := 80.0
	updated, err := v.ValidateUpdate(existing, UpdatePatch{Weight: &weight})
	if err != nil {
		t.Fatalf("ValidateUpdate failed: %v", err)
	}

	if updated.Name != existing.Name || updated.City != existing.City || updated.Age != existing.Age {
		t.Error("unpatched fields changed")
	}
	if updated.Weight != 80 {
		t.Errorf("weight = %v, want 80", updated.Weight)
	}
	// 80 / 1.72² = 27.04, Overweight
	if updated.BMI != 27.04 {
		t.Errorf("BMI = %v, want 27.04", updated.BMI)
	}
	if updated.Verdict != VerdictOverweight {
		t.Errorf("Verdict = %q, want Overweight", updated.Verdict)
	}
}

func TestValidateUpdateRejectsInvalidCandidate(t *testing.T) {
	v := NewValidator(DefaultProfile())
	existing, err := v.ValidateCreate(validInput())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	height := 3.0
	_, err = v.ValidateUpdate(existing, UpdatePatch{Height: &height})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "height" {
		t.Errorf("field = %q, want height", ve.Field)
	}
}

func TestValidatorCustomProfile(t *testing.T) {
	p := DefaultProfile()
	p.HeightMin = 0.5
	v := NewValidator(p)

	in := validInput()
	in.Height = 0.45
	if _, err := v.ValidateCreate(in); err == nil {
		t.Error("height 0.45 should fail under strict profile with min 0.5")
	}
}
