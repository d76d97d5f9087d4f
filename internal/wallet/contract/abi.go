// Package contract holds the ABI of the project mint contract deployed for
// every approved project.
package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Function names used by the mint flow.
const (
	FnMint      = "mint"
	FnMintPrice = "mintPrice"
)

// MintABI is the subset of the project contract ABI this client calls.
//
//	mint(uint256 amount, string name, address to) payable
//	mintPrice() view returns (uint256)
//	totalSupply() view returns (uint256)
//	maxSupply() view returns (uint256)
const MintABI = `[
	{"type":"function","name":"mint","stateMutability":"payable",
	 "inputs":[{"name":"amount","type":"uint256"},{"name":"name","type":"string"},{"name":"to","type":"address"}],
	 "outputs":[]},
	{"type":"function","name":"mintPrice","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"maxSupply","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

// ParseMintABI parses MintABI.
func ParseMintABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(MintABI))
}
