package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vitalcare/patient-registry/internal/domain/patient"
)

func testSet() patient.RecordSet {
	return patient.RecordSet{
		"AAAA0001": {
			ID: "AAAA0001", Name: "Ananya Verma", City: "Guwahati",
			Age: 28, Gender: patient.GenderFemale, Height: 1.72, Weight: 68.5,
			BMI: 23.15, Verdict: patient.VerdictNormal,
		},
		"BBBB0002": {
			ID: "BBBB0002", Name: "Ravi Mehta", City: "Mumbai",
			Age: 35, Gender: patient.GenderMale, Height: 1.6, Weight: 80,
			BMI: 31.25, Verdict: patient.VerdictObese,
		},
	}
}

func TestFileGatewayMissingFileLoadsEmpty(t *testing.T) {
	g := NewFileGateway(filepath.Join(t.TempDir(), "patients.json"), nil)

	set, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %d records", len(set))
	}
}

func TestFileGatewayCorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	g := NewFileGateway(path, nil)
	set, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set from corrupt state, got %d records", len(set))
	}
}

func TestFileGatewayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	g := NewFileGateway(path, nil)

	want := testSet()
	if err := g.Save(context.Background(), want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestFileGatewaySaveLoadIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	g := NewFileGateway(path, nil)

	if err := g.Save(context.Background(), testSet()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	// save(load()) must not change the persisted state.
	set, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := g.Save(context.Background(), set); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(first) != string(second) {
		t.Error("save(load()) changed the persisted state")
	}
}

func TestFileGatewaySaveReplacesPriorState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	g := NewFileGateway(path, nil)

	if err := g.Save(context.Background(), testSet()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := g.Save(context.Background(), patient.RecordSet{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	set, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("prior state leaked through: %d records", len(set))
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the record file, found %d entries", len(entries))
	}
}

func TestFileGatewayKeyIsAuthoritativeID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	data := `{"CCCC0003": {"name": "Sneha Kulkarni", "city": "Pune", "age": 22, "gender": "female", "height": 1.55, "weight": 45}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	g := NewFileGateway(path, nil)
	set, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	rec, ok := set["CCCC0003"]
	if !ok {
		t.Fatal("record missing")
	}
	if rec.ID != "CCCC0003" {
		t.Errorf("ID = %q, want CCCC0003", rec.ID)
	}
}
