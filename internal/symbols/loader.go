package symbols

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jevit/stock-analyzer/pkg/model"
)

// ErrNoSymbols is returned when a source yields no tickers
var ErrNoSymbols = errors.New("no symbols")

// Source describes where a watchlist comes from. The first non-empty field
// wins: List, then File, then Universe.
type Source struct {
	List     string // comma separated tickers
	File     string // one ticker per line, # comments
	Universe string // predefined universe name
}

// Load resolves a source to a deduplicated watchlist in input order
func Load(src Source) ([]model.Stock, error) {
	switch {
	case strings.TrimSpace(src.List) != "":
		return fromSymbols(ParseList(src.List))
	case src.File != "":
		return LoadFile(src.File)
	case src.Universe != "":
		syms := GetUniverse(Universe(strings.ToLower(src.Universe)))
		if syms == nil {
			return nil, fmt.Errorf("unknown universe %q (available: %s)", src.Universe, strings.Join(UniverseNames(), ", "))
		}
		return fromSymbols(syms)
	default:
		return fromSymbols(GetUniverse(UniverseDefault))
	}
}

// LoadFile reads a tickers file
func LoadFile(path string) ([]model.Stock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tickers file: %w", err)
	}
	defer f.Close()

	syms, err := ReadTickers(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	stocks, err := fromSymbols(syms)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stocks, nil
}

// ReadTickers parses one ticker per line. Blank lines and lines starting
// with # are skipped, anything after the first field is ignored.
func ReadTickers(r io.Reader) ([]string, error) {
	var syms []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		syms = append(syms, strings.Fields(line)[0])
	}
	return syms, scanner.Err()
}

// ParseList splits a comma or space separated ticker list
func ParseList(list string) []string {
	return strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';' || r == '\t'
	})
}

func fromSymbols(syms []string) ([]model.Stock, error) {
	seen := make(map[string]bool, len(syms))
	stocks := make([]model.Stock, 0, len(syms))
	var invalid []string

	for _, raw := range syms {
		sym := Normalize(raw)
		if sym == "" || seen[sym] {
			continue
		}
		if !isValidSymbol(sym) {
			invalid = append(invalid, raw)
			continue
		}
		seen[sym] = true
		stocks = append(stocks, Lookup(sym))
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid symbols: %s", strings.Join(invalid, ", "))
	}
	if len(stocks) == 0 {
		return nil, ErrNoSymbols
	}
	return stocks, nil
}

// Normalize upper-cases and trims a ticker
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// isValidSymbol accepts tickers such as AAPL, BRK.B, BF-B or MC.PA
func isValidSymbol(symbol string) bool {
	if len(symbol) == 0 || len(symbol) > 12 {
		return false
	}
	for i, c := range symbol {
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case (c == '.' || c == '-' || c == '^' || c == '=') && i < len(symbol)-1:
		default:
			return false
		}
	}
	return true
}
