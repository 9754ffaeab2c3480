package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"SeasonEdge/internal/domain/models"
)

// CSVSource serves candles from per-symbol CSV files in a directory:
// <dir>/<SYMBOL>.csv with a date,open,high,low,close,volume header.
type CSVSource struct {
	dir string
}

func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

func (s *CSVSource) Candles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, strings.ToUpper(symbol)+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candle file: %w", err)
	}
	defer f.Close()

	candles, err := ReadCandles(f, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var out []models.Candle
	for _, c := range candles {
		if !from.IsZero() && c.Date.Before(from) {
			continue
		}
		if !to.IsZero() && c.Date.After(to) {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no bars for %s in the requested range", symbol)
	}
	return out, nil
}

// ReadCandles parses the date,open,high,low,close,volume format. Column
// order is fixed; a header row is required.
func ReadCandles(r io.Reader, symbol string) ([]models.Candle, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 6 || !strings.EqualFold(header[0], "date") {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var out []models.Candle
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		date, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q", line, row[0])
		}
		c := models.Candle{Date: date, Symbol: symbol}
		for i, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume} {
			v, err := strconv.ParseFloat(row[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad value %q", line, row[i+1])
			}
			*dst = v
		}
		out = append(out, c)
	}
	return out, nil
}
