// Package domain defines core data structures used throughout the paper
// trading simulator.
package domain

// Chain identifies the network a token lives on.
type Chain string

const (
	// ChainSol Solana network.
	ChainSol Chain = "sol"
	// ChainBSC BNB Smart Chain network.
	ChainBSC Chain = "bsc"
)

// String returns the string representation.
func (c Chain) String() string {
	return string(c)
}

// IsValid checks if the Chain value is valid.
func (c Chain) IsValid() bool {
	return c == ChainSol || c == ChainBSC
}

// Asset returns the base asset funding trades on this chain.
func (c Chain) Asset() Asset {
	if c == ChainBSC {
		return AssetBNB
	}
	return AssetSOL
}

// Asset is a chain-native base currency used to fund simulated trades.
type Asset string

const (
	AssetSOL Asset = "SOL"
	AssetBNB Asset = "BNB"
)

// String returns the string representation.
func (a Asset) String() string {
	return string(a)
}
