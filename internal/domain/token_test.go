package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenID(t *testing.T) {
	tests := []struct {
		name    string
		chain   Chain
		address string
		wantErr bool
	}{
		{"valid solana mint", ChainSol, "So11111111111111111111111111111111111111112", false},
		{"valid bsc address", ChainBSC, "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82", false},
		{"solana address too short", ChainSol, "abc123", true},
		{"solana address with hex prefix", ChainSol, "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82", true},
		{"solana address with invalid base58 chars", ChainSol, "O0l1IO0l1IO0l1IO0l1IO0l1IO0l1IO0l1IO0l1I", true},
		{"bsc address without prefix", ChainBSC, "0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82", true},
		{"bsc address too short", ChainBSC, "0x123", true},
		{"empty address", ChainSol, "", true},
		{"unsupported chain", Chain("eth"), "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := NewTokenID(tt.chain, tt.address)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.chain, token.Chain)
			assert.Equal(t, tt.address, token.ContractAddress)
		})
	}
}

func TestTokenKeyRoundTrip(t *testing.T) {
	token, err := NewTokenID(ChainSol, "So11111111111111111111111111111111111111112")
	require.NoError(t, err)

	key := token.Key()
	assert.Equal(t, "sol_So11111111111111111111111111111111111111112", key)

	parsed, err := ParseTokenKey(key)
	require.NoError(t, err)
	assert.Equal(t, token, parsed)
}

func TestParseTokenKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "sol", "sol_", "_abc", "eth_0xabc"} {
		_, err := ParseTokenKey(key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestChainAsset(t *testing.T) {
	assert.Equal(t, AssetSOL, ChainSol.Asset())
	assert.Equal(t, AssetBNB, ChainBSC.Asset())
	assert.True(t, ChainSol.IsValid())
	assert.True(t, ChainBSC.IsValid())
	assert.False(t, Chain("eth").IsValid())
}
