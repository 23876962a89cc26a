package patient

import "sort"

// Sort directions.
const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// sortKeys maps a sortable field name to its key extractor. The BMI key is
// computed fresh from height and weight, never read from the stored value.
var sortKeys = map[string]func(Record) float64{
	"age":    func(r Record) float64 { return float64(r.Age) },
	"height": func(r Record) float64 { return r.Height },
	"weight": func(r Record) float64 { return r.Weight },
	"bmi":    func(r Record) float64 { return ComputeBMI(r.Height, r.Weight) },
}

// Sort returns a copy of records ordered by the given field and direction.
// The sort is stable: equal keys keep their input order. An unsupported
// field or direction yields an InvalidArgumentError.
func Sort(records []Record, field, direction string) ([]Record, error) {
	key, ok := sortKeys[field]
	if !ok {
		return nil, &InvalidArgumentError{Name: "sort field", Value: field}
	}
	if direction != DirectionAsc && direction != DirectionDesc {
		return nil, &InvalidArgumentError{Name: "sort direction", Value: direction}
	}

	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if direction == DirectionDesc {
			return key(out[i]) > key(out[j])
		}
		return key(out[i]) < key(out[j])
	})
	return out, nil
}
