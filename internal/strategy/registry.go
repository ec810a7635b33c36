package strategy

import (
	"fmt"
	"strings"
)

// Registry holds the six detectors in their fixed evaluation order.
// It is built once from an immutable Config and never modified.
type Registry struct {
	detectors []Detector
	byName    map[string]Detector
}

// NewRegistry builds every detector from cfg
func NewRegistry(cfg Config) *Registry {
	detectors := []Detector{
		NewPullbackStrategy(cfg.Pullback, cfg.MinBars),
		NewBreakoutStrategy(cfg.Breakout, cfg.MinBars),
		NewMeanReversionStrategy(cfg.MeanReversion, cfg.MinBars),
		NewMACDStrategy(cfg.MACD, cfg.MinBars),
		NewGoldenCrossStrategy(cfg.GoldenCross, cfg.MinBars),
		NewVolumeBreakoutStrategy(cfg.VolumeBreakout, cfg.MinBars),
	}

	byName := make(map[string]Detector, len(detectors))
	for _, d := range detectors {
		byName[normalizeName(d.Name())] = d
	}

	return &Registry{detectors: detectors, byName: byName}
}

// All returns the detectors in evaluation order
func (r *Registry) All() []Detector {
	out := make([]Detector, len(r.detectors))
	copy(out, r.detectors)
	return out
}

// Names returns the detector names in evaluation order
func (r *Registry) Names() []string {
	names := make([]string, len(r.detectors))
	for i, d := range r.detectors {
		names[i] = d.Name()
	}
	return names
}

// Get looks a detector up by name. "Trend Pullback", "trend-pullback" and
// "trend_pullback" all resolve to the same detector.
func (r *Registry) Get(name string) (Detector, error) {
	d, ok := r.byName[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownStrategy, name, strings.Join(r.Names(), ", "))
	}
	return d, nil
}

// Select returns the named detector, or all of them for an empty name
func (r *Registry) Select(name string) ([]Detector, error) {
	return Select(r.detectors, name)
}

// Select picks the named detector out of detectors. An empty name or "all"
// selects every detector.
func Select(detectors []Detector, name string) ([]Detector, error) {
	if name == "" || strings.EqualFold(name, "all") {
		out := make([]Detector, len(detectors))
		copy(out, detectors)
		return out, nil
	}

	key := normalizeName(name)
	names := make([]string, 0, len(detectors))
	for _, d := range detectors {
		if normalizeName(d.Name()) == key {
			return []Detector{d}, nil
		}
		names = append(names, d.Name())
	}
	return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownStrategy, name, strings.Join(names, ", "))
}

// Info describes a detector for listings
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"` // "trend-following", "counter-trend", "momentum"
}

var strategyTypes = map[string]string{
	NameTrendPullback:  "trend-following",
	NameBreakout:       "momentum",
	NameMeanReversion:  "counter-trend",
	NameMACDCrossover:  "momentum",
	NameGoldenCross:    "trend-following",
	NameVolumeBreakout: "momentum",
}

// AllInfo describes every detector in evaluation order
func (r *Registry) AllInfo() []Info {
	infos := make([]Info, 0, len(r.detectors))
	for _, d := range r.detectors {
		infos = append(infos, Info{
			Name:        d.Name(),
			Description: d.Description(),
			Type:        strategyTypes[d.Name()],
		})
	}
	return infos
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", " ", "_", " ").Replace(name)
}
