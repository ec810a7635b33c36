package provider

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jevit/stock-analyzer/pkg/model"
)

var csvDateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "01/02/2006"}

// CSVProvider serves daily histories from a directory of <SYMBOL>.csv files
// with a Date,Open,High,Low,Close[,Adj Close],Volume header
type CSVProvider struct {
	dir string
}

// NewCSVProvider creates a provider reading from dir
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

// Name returns the provider name
func (p *CSVProvider) Name() string {
	return "csv"
}

// IsAvailable reports whether the data directory exists
func (p *CSVProvider) IsAvailable() bool {
	info, err := os.Stat(p.dir)
	return err == nil && info.IsDir()
}

// Path returns the file backing symbol
func (p *CSVProvider) Path(symbol string) string {
	return filepath.Join(p.dir, strings.ToUpper(symbol)+".csv")
}

// GetDailyCandles reads the symbol's file and returns its last days bars
func (p *CSVProvider) GetDailyCandles(ctx context.Context, symbol string, days int) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(p.Path(symbol))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s: %w", symbol, ErrNoData)}
		}
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	defer f.Close()

	candles, err := ReadCandles(f)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s: %w", symbol, err)}
	}
	if len(candles) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s: %w", symbol, ErrNoData)}
	}

	return lastN(candles, days), nil
}

// SaveCandles writes candles to the symbol's file, replacing it
func (p *CSVProvider) SaveCandles(symbol string, candles []model.Candle) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(p.dir, "."+strings.ToUpper(symbol)+"-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCandles(tmp, candles); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.Path(symbol))
}

// ReadCandles parses a daily OHLCV CSV. Columns are located by header name,
// rows with missing prices are skipped and the result is sorted by date.
func ReadCandles(r io.Reader) ([]model.Candle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[key] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var candles []model.Candle
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) string {
			if i := cols[name]; i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		date, err := parseCSVDate(field("date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		prices := make([]float64, 4)
		missing := false
		for i, name := range []string{"open", "high", "low", "close"} {
			raw := field(name)
			if raw == "" || strings.EqualFold(raw, "null") || strings.EqualFold(raw, "nan") {
				missing = true
				break
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			prices[i] = v
		}
		if missing {
			continue
		}

		var volume int64
		if raw := field("volume"); raw != "" && !strings.EqualFold(raw, "null") {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: volume: %w", line, err)
			}
			volume = int64(v)
		}

		candles = append(candles, model.Candle{
			Time:   date,
			Open:   prices[0],
			High:   prices[1],
			Low:    prices[2],
			Close:  prices[3],
			Volume: volume,
		})
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	return candles, nil
}

// WriteCandles writes candles in the format ReadCandles accepts
func WriteCandles(w io.Writer, candles []model.Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume"}); err != nil {
		return err
	}
	for _, c := range candles {
		record := []string{
			c.Time.Format("2006-01-02"),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatInt(c.Volume, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseCSVDate(s string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sessionDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
