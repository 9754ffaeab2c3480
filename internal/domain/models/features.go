package models

import "time"

// FeatureMatrix is the training/scoring matrix produced by feature
// engineering. Names is the versioned, ordered schema; every row has
// exactly len(Names) values and corresponds to Dates at the same index.
// Never mutated after creation.
type FeatureMatrix struct {
	SchemaVersion string
	Names         []string
	Dates         []time.Time
	Rows          [][]float64
}

func (m *FeatureMatrix) Len() int { return len(m.Rows) }

// Column returns the values of one named feature, or nil when the name is
// not part of the schema.
func (m *FeatureMatrix) Column(name string) []float64 {
	idx := -1
	for i, n := range m.Names {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = row[idx]
	}
	return out
}
