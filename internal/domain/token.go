package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// TokenID identifies a token by chain and contract address. Immutable once a
// trade references it; used to key positions.
type TokenID struct {
	Chain           Chain  `json:"chain"`
	ContractAddress string `json:"ca"`
}

// NewTokenID validates the contract address against the chain's address
// format and returns the identity.
func NewTokenID(chain Chain, contractAddress string) (TokenID, error) {
	if !chain.IsValid() {
		return TokenID{}, errors.Errorf("unsupported chain: %s", chain)
	}
	if err := validateContractAddress(chain, contractAddress); err != nil {
		return TokenID{}, err
	}
	return TokenID{Chain: chain, ContractAddress: contractAddress}, nil
}

// Key returns the position map key representation.
func (t TokenID) Key() string {
	return fmt.Sprintf("%s_%s", t.Chain, t.ContractAddress)
}

// ParseTokenKey splits a position map key back into a TokenID. Addresses are
// not re-validated: keys read from storage were validated when written.
func ParseTokenKey(key string) (TokenID, error) {
	idx := strings.Index(key, "_")
	if idx <= 0 || idx == len(key)-1 {
		return TokenID{}, errors.Errorf("malformed token key: %q", key)
	}
	chain := Chain(key[:idx])
	if !chain.IsValid() {
		return TokenID{}, errors.Errorf("unsupported chain in token key: %q", key)
	}
	return TokenID{Chain: chain, ContractAddress: key[idx+1:]}, nil
}

func validateContractAddress(chain Chain, address string) error {
	if address == "" {
		return errors.New("contract address is empty")
	}

	switch chain {
	case ChainBSC:
		if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
			return errors.Errorf("invalid BSC contract address: %s", address)
		}
	case ChainSol:
		if strings.HasPrefix(address, "0x") || len(address) < 32 || len(address) > 44 {
			return errors.Errorf("invalid Solana contract address: %s", address)
		}
		if _, err := base58.Decode(address); err != nil {
			return errors.Wrapf(err, "invalid Solana contract address: %s", address)
		}
	}

	return nil
}
