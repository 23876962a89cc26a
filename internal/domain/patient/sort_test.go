package patient

import (
	"errors"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{ID: "A1", Name: "Ananya Verma", Age: 28, Height: 1.72, Weight: 68.5}, // bmi 23.15
		{ID: "B2", Name: "Ravi Mehta", Age: 35, Height: 1.6, Weight: 80},      // bmi 31.25
		{ID: "C3", Name: "Nitish Singh", Age: 45, Height: 1.7, Weight: 85},    // bmi 29.41
		{ID: "D4", Name: "Sneha Kulkarni", Age: 22, Height: 1.55, Weight: 45}, // bmi 18.73
	}
}

func TestSortByBMIDesc(t *testing.T) {
	out, err := Sort(sampleRecords(), "bmi", DirectionDesc)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}

	want := []string{"B2", "C3", "A1", "D4"}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("position %d = %q, want %q", i, out[i].ID, id)
		}
	}
}

func TestSortByAgeAsc(t *testing.T) {
	out, err := Sort(sampleRecords(), "age", DirectionAsc)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].Age > out[i].Age {
			t.Fatalf("not ascending at %d: %d > %d", i, out[i-1].Age, out[i].Age)
		}
	}
}

func TestSortStability(t *testing.T) {
	records := []Record{
		{ID: "A1", Weight: 70},
		{ID: "B2", Weight: 70},
		{ID: "C3", Weight: 60},
		{ID: "D4", Weight: 70},
	}

	out, err := Sort(records, "weight", DirectionAsc)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}

	// Equal keys keep their input order.
	want := []string{"C3", "A1", "B2", "D4"}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("position %d = %q, want %q", i, out[i].ID, id)
		}
	}
}

func TestSortComputesBMIFresh(t *testing.T) {
	// Stored BMI values are ignored; the key comes from height/weight.
	records := []Record{
		{ID: "A1", Height: 1.6, Weight: 80, BMI: 1},
		{ID: "B2", Height: 1.72, Weight: 68.5, BMI: 99},
	}

	out, err := Sort(records, "bmi", DirectionDesc)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if out[0].ID != "A1" {
		t.Errorf("first = %q, want A1 (computed bmi 31.25 > 23.15)", out[0].ID)
	}
}

func TestSortNonPositiveHeightDefaultsToZero(t *testing.T) {
	records := []Record{
		{ID: "A1", Height: 1.72, Weight: 68.5},
		{ID: "B2", Height: 0, Weight: 70},
	}

	out, err := Sort(records, "bmi", DirectionAsc)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if out[0].ID != "B2" {
		t.Errorf("malformed record should sort with key 0, got first = %q", out[0].ID)
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	if _, err := Sort(records, "bmi", DirectionDesc); err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if records[0].ID != "A1" {
		t.Error("input slice was reordered")
	}
}

func TestSortInvalidArguments(t *testing.T) {
	cases := []struct {
		name      string
		field     string
		direction string
	}{
		{"unknown field", "name", DirectionAsc},
		{"empty field", "", DirectionAsc},
		{"unknown direction", "bmi", "sideways"},
		{"empty direction", "bmi", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Sort(sampleRecords(), tc.field, tc.direction)
			var ia *InvalidArgumentError
			if !errors.As(err, &ia) {
				t.Fatalf("expected InvalidArgumentError, got %v", err)
			}
		})
	}
}
