package symbols

import (
	"sort"

	"github.com/jevit/stock-analyzer/pkg/model"
)

// Universe represents a predefined stock universe
type Universe string

const (
	UniverseDefault   Universe = "default"
	UniverseSP500     Universe = "sp500"
	UniverseNasdaq100 Universe = "nasdaq100"
	UniverseTest      Universe = "test" // Small set for testing
)

// GetUniverse returns the list of symbols for a given universe
func GetUniverse(u Universe) []string {
	switch u {
	case UniverseDefault:
		return DefaultSymbols
	case UniverseSP500:
		return SP500Symbols
	case UniverseNasdaq100:
		return Nasdaq100Symbols
	case UniverseTest:
		return TestSymbols
	default:
		return nil
	}
}

// UniverseNames lists the predefined universes
func UniverseNames() []string {
	return []string{string(UniverseDefault), string(UniverseSP500), string(UniverseNasdaq100), string(UniverseTest)}
}

// Lookup returns the stock for a ticker, named when it is a known company
func Lookup(symbol string) model.Stock {
	if s, ok := knownStocks[symbol]; ok {
		return s
	}
	return model.Stock{Symbol: symbol, Name: symbol}
}

// DefaultSymbols is the built-in watchlist: large caps across sectors
var DefaultSymbols = func() []string {
	out := make([]string, 0, len(knownStocks))
	for sym := range knownStocks {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}()

// TestSymbols is a small set for quick testing
var TestSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"META", "TSLA", "AMD", "NFLX", "JPM",
}

// Nasdaq100Symbols is the NASDAQ-100 components (as of 2024)
var Nasdaq100Symbols = []string{
	"AAPL", "ABNB", "ADBE", "ADI", "ADP", "ADSK", "AEP", "AMAT", "AMD", "AMGN",
	"AMZN", "ANSS", "ARM", "ASML", "AVGO", "AZN", "BIIB", "BKNG", "BKR", "CCEP",
	"CDNS", "CDW", "CEG", "CHTR", "CMCSA", "COST", "CPRT", "CRWD", "CSCO", "CSGP",
	"CSX", "CTAS", "CTSH", "DDOG", "DLTR", "DXCM", "EA", "EXC", "FANG", "FAST",
	"FTNT", "GEHC", "GFS", "GILD", "GOOG", "GOOGL", "HON", "IDXX", "ILMN", "INTC",
	"INTU", "ISRG", "KDP", "KHC", "KLAC", "LIN", "LRCX", "LULU", "MAR", "MCHP",
	"MDB", "MDLZ", "MELI", "META", "MNST", "MRNA", "MRVL", "MSFT", "MU", "NFLX",
	"NVDA", "NXPI", "ODFL", "ON", "ORLY", "PANW", "PAYX", "PCAR", "PDD", "PEP",
	"PYPL", "QCOM", "REGN", "ROP", "ROST", "SBUX", "SMCI", "SNPS", "TEAM", "TMUS",
	"TSLA", "TTD", "TTWO", "TXN", "VRSK", "VRTX", "WBD", "WDAY", "XEL", "ZS",
}

// SP500Symbols is a representative subset of S&P 500 (top 100 by market cap)
var SP500Symbols = []string{
	// Technology
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "NVDA", "META", "TSLA", "AVGO", "ORCL",
	"CRM", "ADBE", "AMD", "ACN", "CSCO", "INTC", "IBM", "TXN", "QCOM", "AMAT",
	// Financials
	"BRK-B", "JPM", "V", "MA", "BAC", "WFC", "GS", "MS", "BLK", "SPGI",
	"AXP", "C", "SCHW", "CB", "MMC", "PGR", "AON", "ICE", "CME", "MCO",
	// Healthcare
	"UNH", "JNJ", "LLY", "PFE", "ABBV", "MRK", "TMO", "ABT", "DHR", "BMY",
	"AMGN", "MDT", "ISRG", "GILD", "CVS", "ELV", "SYK", "REGN", "VRTX", "ZTS",
	// Consumer
	"WMT", "PG", "KO", "PEP", "COST", "MCD", "NKE", "SBUX", "TGT", "LOW",
	"HD", "TJX", "BKNG", "MAR", "ORLY", "AZO", "ROST", "DG", "DLTR", "CMG",
	// Industrials
	"CAT", "DE", "UNP", "HON", "UPS", "BA", "RTX", "LMT", "GE", "MMM",
	// Energy
	"XOM", "CVX", "COP", "SLB", "EOG", "MPC", "PSX", "VLO", "OXY", "KMI",
	// Communications
	"NFLX", "DIS", "CMCSA", "T", "VZ", "TMUS", "CHTR", "EA", "TTWO", "WBD",
	// Real Estate & Utilities
	"AMT", "PLD", "CCI", "EQIX", "PSA", "NEE", "DUK", "SO", "D", "AEP",
}

var knownStocks = func() map[string]model.Stock {
	list := []model.Stock{
		// Tech
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ"},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "NASDAQ"},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Exchange: "NASDAQ"},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Exchange: "NASDAQ"},
		{Symbol: "META", Name: "Meta Platforms Inc.", Exchange: "NASDAQ"},
		{Symbol: "NVDA", Name: "NVIDIA Corporation", Exchange: "NASDAQ"},
		{Symbol: "TSLA", Name: "Tesla Inc.", Exchange: "NASDAQ"},
		{Symbol: "AMD", Name: "Advanced Micro Devices", Exchange: "NASDAQ"},
		{Symbol: "INTC", Name: "Intel Corporation", Exchange: "NASDAQ"},
		{Symbol: "CRM", Name: "Salesforce Inc.", Exchange: "NYSE"},
		{Symbol: "ORCL", Name: "Oracle Corporation", Exchange: "NYSE"},
		{Symbol: "ADBE", Name: "Adobe Inc.", Exchange: "NASDAQ"},
		{Symbol: "CSCO", Name: "Cisco Systems Inc.", Exchange: "NASDAQ"},
		{Symbol: "AVGO", Name: "Broadcom Inc.", Exchange: "NASDAQ"},
		{Symbol: "QCOM", Name: "Qualcomm Inc.", Exchange: "NASDAQ"},

		// Finance
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Exchange: "NYSE"},
		{Symbol: "BAC", Name: "Bank of America Corp", Exchange: "NYSE"},
		{Symbol: "GS", Name: "Goldman Sachs Group", Exchange: "NYSE"},
		{Symbol: "MS", Name: "Morgan Stanley", Exchange: "NYSE"},
		{Symbol: "BLK", Name: "BlackRock Inc.", Exchange: "NYSE"},
		{Symbol: "V", Name: "Visa Inc.", Exchange: "NYSE"},
		{Symbol: "MA", Name: "Mastercard Inc.", Exchange: "NYSE"},

		// Healthcare
		{Symbol: "JNJ", Name: "Johnson & Johnson", Exchange: "NYSE"},
		{Symbol: "UNH", Name: "UnitedHealth Group", Exchange: "NYSE"},
		{Symbol: "PFE", Name: "Pfizer Inc.", Exchange: "NYSE"},
		{Symbol: "ABBV", Name: "AbbVie Inc.", Exchange: "NYSE"},
		{Symbol: "MRK", Name: "Merck & Co. Inc.", Exchange: "NYSE"},
		{Symbol: "LLY", Name: "Eli Lilly and Company", Exchange: "NYSE"},

		// Consumer
		{Symbol: "WMT", Name: "Walmart Inc.", Exchange: "NYSE"},
		{Symbol: "HD", Name: "Home Depot Inc.", Exchange: "NYSE"},
		{Symbol: "PG", Name: "Procter & Gamble Co.", Exchange: "NYSE"},
		{Symbol: "KO", Name: "Coca-Cola Company", Exchange: "NYSE"},
		{Symbol: "PEP", Name: "PepsiCo Inc.", Exchange: "NASDAQ"},
		{Symbol: "COST", Name: "Costco Wholesale Corp", Exchange: "NASDAQ"},
		{Symbol: "MCD", Name: "McDonald's Corporation", Exchange: "NYSE"},

		// Industrial & Energy
		{Symbol: "CAT", Name: "Caterpillar Inc.", Exchange: "NYSE"},
		{Symbol: "BA", Name: "Boeing Company", Exchange: "NYSE"},
		{Symbol: "GE", Name: "General Electric Co.", Exchange: "NYSE"},
		{Symbol: "XOM", Name: "Exxon Mobil Corporation", Exchange: "NYSE"},
		{Symbol: "CVX", Name: "Chevron Corporation", Exchange: "NYSE"},

		// Communication
		{Symbol: "DIS", Name: "Walt Disney Company", Exchange: "NYSE"},
		{Symbol: "NFLX", Name: "Netflix Inc.", Exchange: "NASDAQ"},
		{Symbol: "VZ", Name: "Verizon Communications", Exchange: "NYSE"},

		// ETFs
		{Symbol: "SPY", Name: "SPDR S&P 500 ETF", Exchange: "NYSEARCA"},
		{Symbol: "QQQ", Name: "Invesco QQQ Trust", Exchange: "NASDAQ"},
	}

	m := make(map[string]model.Stock, len(list))
	for _, s := range list {
		m[s.Symbol] = s
	}
	return m
}()
