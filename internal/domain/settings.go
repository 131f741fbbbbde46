package domain

// PanelPreset holds the quick-trade button values for one chain.
type PanelPreset struct {
	Buys  []float64 `json:"buys"`
	Sells []float64 `json:"sells"`
}

// UISettings are presentation-layer preferences persisted alongside the
// ledger state. The ledger only stores them; rendering is out of its hands.
type UISettings struct {
	// Scale is the floating panel button scale factor.
	Scale float64 `json:"scale"`
	// Opacity is the floating panel opacity, 0..1.
	Opacity float64 `json:"opacity"`
	// DefaultBuyAmount is the base-asset quantity used by one-click buys.
	DefaultBuyAmount float64 `json:"defaultBuyAmount"`
	// Presets are per-chain quick-trade button values.
	Presets map[Chain]PanelPreset `json:"presets,omitempty"`
}

// DefaultUISettings returns the settings used before the user saves any.
func DefaultUISettings() UISettings {
	return UISettings{
		Scale:            1.0,
		Opacity:          1.0,
		DefaultBuyAmount: 0.1,
		Presets: map[Chain]PanelPreset{
			ChainSol: {Buys: []float64{0.1, 0.5, 1.0, 5.0}, Sells: []float64{10, 25, 50, 100}},
			ChainBSC: {Buys: []float64{0.01, 0.05, 0.1, 0.5}, Sells: []float64{10, 25, 50, 100}},
		},
	}
}
