package usecase

import (
	"testing"

	"SeasonEdge/internal/domain/models"
)

func f(label string, conf float64) models.PatternFinding {
	return models.PatternFinding{Label: label, Category: models.CategorySeasonal, Confidence: conf}
}

func TestMergeDedupesByLabelKeepingStrongest(t *testing.T) {
	got := mergeFindings(0,
		[]models.PatternFinding{f("January strength", 0.5)},
		[]models.PatternFinding{f("January strength", 0.8), f("other", 0.3)},
	)
	if len(got) != 2 {
		t.Fatalf("merged %d findings, want 2", len(got))
	}
	if got[0].Label != "January strength" || got[0].Confidence != 0.8 {
		t.Fatalf("top finding = %+v", got[0])
	}
}

func TestMergeCollapsesSeasonalSubject(t *testing.T) {
	got := mergeFindings(0,
		[]models.PatternFinding{f("December strength", 0.8)},
		[]models.PatternFinding{f("model signal: December", 0.6)},
	)
	if len(got) != 1 {
		t.Fatalf("two findings about December survived: %+v", got)
	}
	if got[0].Label != "December strength" || got[0].Confidence != 0.8 {
		t.Fatalf("survivor = %+v, want the stronger December finding", got[0])
	}
}

func TestMergeKeepsDistinctStrategyLabels(t *testing.T) {
	s := func(label string, conf float64) models.PatternFinding {
		return models.PatternFinding{Label: label, Category: models.CategoryStrategy, Confidence: conf}
	}
	got := mergeFindings(0, []models.PatternFinding{
		s("long bias in June", 0.7),
		s("calendar spread June vs September", 0.6),
	})
	if len(got) != 2 {
		t.Fatalf("distinct strategies collapsed: %+v", got)
	}
}

func TestMergeFiltersAndSorts(t *testing.T) {
	got := mergeFindings(0.6,
		[]models.PatternFinding{f("a", 0.9), f("b", 0.5), f("c", 0.7)},
	)
	if len(got) != 2 {
		t.Fatalf("filtered to %d, want 2", len(got))
	}
	if got[0].Label != "a" || got[1].Label != "c" {
		t.Fatalf("order = %q, %q", got[0].Label, got[1].Label)
	}
}

func TestMergeThresholdMonotonicity(t *testing.T) {
	groups := [][]models.PatternFinding{
		{f("a", 0.9), f("b", 0.6), f("c", 0.75), f("d", 0.5)},
	}
	loose := mergeFindings(0.5, groups...)
	strict := mergeFindings(0.75, groups...)

	if len(strict) > len(loose) {
		t.Fatalf("raising threshold grew the result: %d > %d", len(strict), len(loose))
	}
	seen := map[string]bool{}
	for _, lf := range loose {
		seen[lf.Label] = true
	}
	for _, sf := range strict {
		if !seen[sf.Label] {
			t.Fatalf("strict result contains %q absent from loose result", sf.Label)
		}
	}
}

func TestMergeStableTieOrder(t *testing.T) {
	a := mergeFindings(0, []models.PatternFinding{f("zeta", 0.7), f("alpha", 0.7)})
	b := mergeFindings(0, []models.PatternFinding{f("alpha", 0.7), f("zeta", 0.7)})
	if a[0].Label != b[0].Label {
		t.Fatalf("tie order unstable: %q vs %q", a[0].Label, b[0].Label)
	}
	if a[0].Label != "alpha" {
		t.Fatalf("ties should order by label, got %q first", a[0].Label)
	}
}

func TestPatternStrengthInterpretation(t *testing.T) {
	strong := []models.MonthlyStat{
		{MeanReturn: 0.06, WinRate: 1, PValueZero: 0.001, SampleCount: 10},
		{MeanReturn: -0.05, WinRate: 0, PValueZero: 0.002, SampleCount: 10},
	}
	ps := patternStrength(strong, 0.05)
	if ps == nil || ps.Overall < 0.7 {
		t.Fatalf("strength = %+v, want strong", ps)
	}

	weak := []models.MonthlyStat{
		{MeanReturn: 0.001, WinRate: 0.52, PValueZero: 0.8, SampleCount: 10},
		{MeanReturn: -0.001, WinRate: 0.49, PValueZero: 0.9, SampleCount: 10},
	}
	ps = patternStrength(weak, 0.05)
	if ps.Overall >= 0.4 {
		t.Fatalf("noise scored %v, want weak", ps.Overall)
	}
	if patternStrength(nil, 0.05) != nil {
		t.Fatal("empty stats should yield nil strength")
	}
}

func TestStrategyFindings(t *testing.T) {
	stats := []models.MonthlyStat{
		{Month: 1, MeanReturn: 0.04, WinRate: 0.9, PValueZero: 0.01, SampleCount: 10},
		{Month: 9, MeanReturn: -0.03, WinRate: 0.2, PValueZero: 0.02, SampleCount: 10},
		{Month: 6, MeanReturn: 0.01, WinRate: 0.6, PValueZero: 0.4, SampleCount: 10},
	}
	got := strategyFindings(stats, 0.05, 3)
	if len(got) != 3 {
		t.Fatalf("strategies = %d, want long + avoid + spread", len(got))
	}
	for _, s := range got {
		if s.Category != models.CategoryStrategy {
			t.Fatalf("category = %v", s.Category)
		}
	}
	if got[0].Label != "long bias in January" {
		t.Fatalf("long label = %q", got[0].Label)
	}
	if got[1].Label != "reduce exposure in September" {
		t.Fatalf("avoid label = %q", got[1].Label)
	}
	if got[2].Label != "calendar spread January vs September" {
		t.Fatalf("spread label = %q", got[2].Label)
	}

	// insignificant months generate nothing
	if got := strategyFindings(stats[2:], 0.05, 3); len(got) != 0 {
		t.Fatalf("insignificant month produced strategies: %+v", got)
	}
}
