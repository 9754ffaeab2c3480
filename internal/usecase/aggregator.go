package usecase

import (
	"sort"
	"strings"

	"SeasonEdge/internal/domain/models"
)

// seasonalSubjects are the calendar periods a seasonal finding can be
// about. A stat-table row and a model signal naming the same period
// describe one pattern, not two.
var seasonalSubjects = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday",
	"Q1", "Q2", "Q3", "Q4",
}

func mergeKey(f models.PatternFinding) string {
	if f.Category == models.CategorySeasonal {
		for _, s := range seasonalSubjects {
			if strings.Contains(f.Label, s) {
				return string(f.Category) + "|" + s
			}
		}
	}
	return string(f.Category) + "|" + f.Label
}

// mergeFindings combines findings from every module: duplicates about
// the same subject keep the highest confidence, anything below the
// threshold is dropped, and the survivors are ordered by confidence
// (label breaks ties so the ordering is stable across runs).
func mergeFindings(threshold float64, groups ...[]models.PatternFinding) []models.PatternFinding {
	byKey := make(map[string]models.PatternFinding)
	for _, group := range groups {
		for _, f := range group {
			key := mergeKey(f)
			if cur, ok := byKey[key]; ok && cur.Confidence >= f.Confidence {
				continue
			}
			byKey[key] = f
		}
	}

	out := make([]models.PatternFinding, 0, len(byKey))
	for _, f := range byKey {
		if f.Confidence < threshold {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Label < out[j].Label
	})
	return out
}
