// Package export renders analysis results in tabular form for
// spreadsheet consumers.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"SeasonEdge/internal/domain/models"
)

var monthlyHeader = []string{
	"month", "sample_count", "mean_return", "median_return", "win_rate",
	"std_dev", "min_return", "max_return", "p_value_zero", "p_value_vs_mean",
	"effect_size", "ci_low", "ci_high",
}

// WriteMonthlyStats emits one row per calendar month.
func WriteMonthlyStats(w io.Writer, stats []models.MonthlyStat) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(monthlyHeader); err != nil {
		return err
	}
	for _, st := range stats {
		row := []string{
			strconv.Itoa(int(st.Month)),
			strconv.Itoa(st.SampleCount),
			ftoa(st.MeanReturn), ftoa(st.MedianReturn), ftoa(st.WinRate),
			ftoa(st.StdDev), ftoa(st.MinReturn), ftoa(st.MaxReturn),
			ftoa(st.PValueZero), ftoa(st.PValueVsMean),
			ftoa(st.EffectSize), ftoa(st.CILow), ftoa(st.CIHigh),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadMonthlyStats parses the format WriteMonthlyStats produces.
func ReadMonthlyStats(r io.Reader) ([]models.MonthlyStat, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	if len(header) != len(monthlyHeader) {
		return nil, fmt.Errorf("unexpected header width %d", len(header))
	}

	var out []models.MonthlyStat
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		st, err := parseMonthlyRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func parseMonthlyRow(row []string) (models.MonthlyStat, error) {
	var st models.MonthlyStat
	m, err := strconv.Atoi(row[0])
	if err != nil || m < 1 || m > 12 {
		return st, fmt.Errorf("bad month %q", row[0])
	}
	st.Month = time.Month(m)
	if st.SampleCount, err = strconv.Atoi(row[1]); err != nil {
		return st, fmt.Errorf("bad sample count %q", row[1])
	}

	fields := []*float64{
		&st.MeanReturn, &st.MedianReturn, &st.WinRate, &st.StdDev,
		&st.MinReturn, &st.MaxReturn, &st.PValueZero, &st.PValueVsMean,
		&st.EffectSize, &st.CILow, &st.CIHigh,
	}
	for i, dst := range fields {
		v, err := strconv.ParseFloat(row[i+2], 64)
		if err != nil {
			return st, fmt.Errorf("bad value %q in column %s", row[i+2], monthlyHeader[i+2])
		}
		*dst = v
	}
	return st, nil
}

// WriteFindings emits the ranked findings table.
func WriteFindings(w io.Writer, findings []models.PatternFinding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "category", "confidence", "description"}); err != nil {
		return err
	}
	for _, f := range findings {
		if err := cw.Write([]string{f.Label, string(f.Category), ftoa(f.Confidence), f.Description}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRegimes emits the run-length-encoded regime segments.
func WriteRegimes(w io.Writer, segments []models.RegimeSegment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"dimension", "type", "start", "end", "sessions"}); err != nil {
		return err
	}
	for _, seg := range segments {
		row := []string{
			seg.Dimension, string(seg.Type),
			seg.Start.Format("2006-01-02"), seg.End.Format("2006-01-02"),
			strconv.Itoa(seg.Sessions),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBreaks emits the detected structural breaks.
func WriteBreaks(w io.Writer, breaks []models.StructuralBreak) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "type", "magnitude", "test_statistic"}); err != nil {
		return err
	}
	for _, b := range breaks {
		row := []string{
			b.Date.Format("2006-01-02"), string(b.Type),
			ftoa(b.Magnitude), ftoa(b.TestStatistic),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}
