package symbols

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadTickers(t *testing.T) {
	input := "# watchlist\nAAPL\n\n  msft  \nBRK-B  berkshire\n#TSLA\n"
	got, err := ReadTickers(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTickers() error = %v", err)
	}
	want := []string{"AAPL", "msft", "BRK-B"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ReadTickers() = %v, want %v", got, want)
	}
}

func TestParseList(t *testing.T) {
	got := ParseList("aapl, MSFT;nvda  spy")
	if strings.Join(got, ",") != "aapl,MSFT,nvda,spy" {
		t.Errorf("ParseList() = %v", got)
	}
}

func TestLoadFromList(t *testing.T) {
	stocks, err := Load(Source{List: "aapl,msft,AAPL,xyz", File: "ignored.txt"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stocks) != 3 {
		t.Fatalf("got %d stocks, want 3 (deduplicated)", len(stocks))
	}
	if stocks[0].Symbol != "AAPL" || stocks[0].Name != "Apple Inc." {
		t.Errorf("first stock = %+v", stocks[0])
	}
	if stocks[2].Symbol != "XYZ" || stocks[2].Name != "XYZ" {
		t.Errorf("unknown ticker = %+v, want name defaulting to the symbol", stocks[2])
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.txt")
	if err := os.WriteFile(path, []byte("# mine\nnvda\nmc.pa\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stocks, err := Load(Source{File: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stocks) != 2 || stocks[1].Symbol != "MC.PA" {
		t.Errorf("stocks = %+v", stocks)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, []byte("# nothing\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(empty); !errors.Is(err, ErrNoSymbols) {
		t.Errorf("empty file error = %v, want ErrNoSymbols", err)
	}
}

func TestLoadUniverse(t *testing.T) {
	stocks, err := Load(Source{Universe: "TEST"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stocks) != len(TestSymbols) {
		t.Errorf("got %d stocks, want %d", len(stocks), len(TestSymbols))
	}

	if _, err := Load(Source{Universe: "moon"}); err == nil {
		t.Error("expected an error for an unknown universe")
	}

	def, err := Load(Source{})
	if err != nil || len(def) != len(DefaultSymbols) {
		t.Errorf("default universe = %d stocks, err %v", len(def), err)
	}
}

func TestInvalidSymbols(t *testing.T) {
	tests := []struct {
		symbol string
		valid  bool
	}{
		{"AAPL", true},
		{"BRK-B", true},
		{"BRK.B", true},
		{"^GSPC", true},
		{"EURUSD=X", true},
		{"AAPL.", false},
		{"A$PL", false},
		{"WAYTOOLONGTICKER", false},
	}
	for _, tt := range tests {
		if got := isValidSymbol(tt.symbol); got != tt.valid {
			t.Errorf("isValidSymbol(%q) = %v, want %v", tt.symbol, got, tt.valid)
		}
	}

	if _, err := Load(Source{List: "AAPL,A$PL"}); err == nil {
		t.Error("expected an error for an invalid ticker")
	}
}
