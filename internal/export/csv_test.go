package export

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"SeasonEdge/internal/domain/models"
)

func TestMonthlyStatsRoundTrip(t *testing.T) {
	in := []models.MonthlyStat{
		{
			Month: time.January, SampleCount: 8, MeanReturn: 0.0234,
			MedianReturn: 0.021, WinRate: 0.875, StdDev: 0.011,
			MinReturn: -0.005, MaxReturn: 0.04, PValueZero: 0.003,
			PValueVsMean: 0.01, EffectSize: 1.2, CILow: 0.015, CIHigh: 0.031,
		},
		{Month: time.September, SampleCount: 8, MeanReturn: -0.012, WinRate: 0.25, PValueZero: 0.04},
	}

	var buf bytes.Buffer
	if err := WriteMonthlyStats(&buf, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadMonthlyStats(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestReadRejectsMalformedRows(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteMonthlyStats(&buf, nil)
	bad := buf.String() + "13,5,0,0,0,0,0,0,0,0,0,0,0\n"
	if _, err := ReadMonthlyStats(strings.NewReader(bad)); err == nil {
		t.Fatal("month 13 accepted")
	}
}

func TestWriteFindings(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFindings(&buf, []models.PatternFinding{
		{Label: "January strength", Category: models.CategorySeasonal, Confidence: 0.9, Description: "up 8 of 8 years"},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "January strength") || !strings.Contains(got, "seasonal") {
		t.Fatalf("output missing fields:\n%s", got)
	}
	if !strings.HasPrefix(got, "label,category,confidence,description\n") {
		t.Fatalf("header missing:\n%s", got)
	}
}

func TestWriteRegimesAndBreaks(t *testing.T) {
	start := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := WriteRegimes(&buf, []models.RegimeSegment{
		{Dimension: "trend", Type: models.RegimeBull, Start: start, End: start.AddDate(0, 1, 0), Sessions: 21},
	})
	if err != nil {
		t.Fatalf("write regimes: %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "trend,bull,2023-02-01,2023-03-01,21") {
		t.Fatalf("regime row:\n%s", got)
	}

	buf.Reset()
	err = WriteBreaks(&buf, []models.StructuralBreak{
		{Date: start, Type: models.BreakMeanShift, Magnitude: 2.5, TestStatistic: 3.1},
	})
	if err != nil {
		t.Fatalf("write breaks: %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "2023-02-01,meanShift,") {
		t.Fatalf("break row:\n%s", got)
	}
}
